package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bnema/layeredge-farmer/internal/adapters/dashboard"
	"github.com/bnema/layeredge-farmer/internal/adapters/keystore"
	tomlledger "github.com/bnema/layeredge-farmer/internal/adapters/ledger/toml"
	"github.com/bnema/layeredge-farmer/internal/adapters/proxylist"
	ethsigner "github.com/bnema/layeredge-farmer/internal/adapters/signer"
	"github.com/bnema/layeredge-farmer/internal/application"
	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	config config
	log    zerolog.Logger
	now    func() time.Time
}

func wireApp(configFile string) (*app, error) {
	cfg, err := loadConfig(viper.New(), configFile)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	return &app{config: cfg, log: log, now: time.Now}, nil
}

func newLogger(cfg config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var log zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "console":
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	case "json":
		log = zerolog.New(os.Stderr)
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q (want console or json)", cfg.LogFormat)
	}

	return log.Level(level).With().Timestamp().Logger(), nil
}

// fleetRuntime holds everything a farming run needs: the fleet, its proxy
// source, and the collector the status renderer reads from.
type fleetRuntime struct {
	identity  domain.Identity
	proxies   ports.ProxySource
	collector *application.Collector
	fleet     *application.Fleet
	newClient func(path domain.NetworkPath) (ports.DashboardAPI, error)
}

func buildRuntime(ctx context.Context, a *app) (*fleetRuntime, error) {
	key, err := resolvePrivateKey(ctx, a.config)
	if err != nil {
		return nil, err
	}

	signer, err := ethsigner.NewEthereum(key)
	if err != nil {
		return nil, err
	}

	identity := domain.Identity{Wallet: domain.WalletAddress(a.config.WalletAddress)}
	if !strings.EqualFold(string(signer.Address()), string(identity.Wallet)) {
		// The dashboard keys sessions on wallet_address; a key that does not
		// belong to it will sign messages nobody can attribute.
		a.log.Warn().
			Str("wallet", string(identity.Wallet)).
			Str("key_address", string(signer.Address())).
			Msg("private key does not match wallet_address")
	}

	var persistent ports.StatsLedger
	if a.config.LedgerPath != "" {
		ledger, err := tomlledger.NewLedger(a.config.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("open points ledger: %w", err)
		}
		persistent = ledger
	}
	collector := application.NewCollector(persistent, a.log)

	newClient := func(path domain.NetworkPath) (ports.DashboardAPI, error) {
		httpClient, err := dashboard.NewHTTPClient(path, a.config.RequestTimeout)
		if err != nil {
			return nil, err
		}
		return &dashboard.Client{
			BaseURL:        a.config.BaseURL,
			HTTPClient:     httpClient,
			Signer:         signer,
			RequestTimeout: a.config.RequestTimeout,
		}, nil
	}

	factory := func(path domain.NetworkPath) (*application.Worker, error) {
		client, err := newClient(path)
		if err != nil {
			return nil, err
		}
		return application.NewWorker(application.WorkerConfig{
			Proxy:        path,
			Wallet:       identity.Wallet,
			PollInterval: a.config.PollInterval,
			API:          client,
			Clock:        ports.SystemClock{},
			Ledger:       collector,
			Logger:       a.log,
		})
	}

	return &fleetRuntime{
		identity:  identity,
		proxies:   proxylist.NewFile(a.config.ProxyFile, a.log),
		collector: collector,
		fleet:     application.NewFleet(factory, a.log),
		newClient: newClient,
	}, nil
}

func resolvePrivateKey(ctx context.Context, cfg config) (string, error) {
	if cfg.PrivateKey != "" {
		return keystore.Static(cfg.PrivateKey).PrivateKey(ctx)
	}

	store, err := keystore.NewFile(cfg.PrivateKeyFile)
	if err != nil {
		return "", err
	}
	return store.PrivateKey(ctx)
}
