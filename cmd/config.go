package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "farmctl"
	configType = "toml"
	configDir  = ".farmctl"
	envPrefix  = "FARMCTL"
)

// config is the immutable process-wide configuration. It is resolved once at
// startup and passed down explicitly; nothing reads viper after this.
type config struct {
	BaseURL        string
	WalletAddress  string
	PrivateKey     string
	PrivateKeyFile string
	ProxyFile      string
	LedgerPath     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
}

func loadConfig(cfg *viper.Viper, configFile string) (config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	if configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(homeDir, configDir))
		}
		cfg.AddConfigPath(".")
	}

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault("base_url", "https://dashboard.layeredge.io")
	cfg.SetDefault("proxy_file", "proxy_list.txt")
	cfg.SetDefault("poll_interval", "5s")
	cfg.SetDefault("request_timeout", "15s")
	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.format", "console")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := config{
		BaseURL:        cfg.GetString("base_url"),
		WalletAddress:  cfg.GetString("wallet_address"),
		PrivateKey:     cfg.GetString("private_key"),
		PrivateKeyFile: cfg.GetString("private_key_file"),
		ProxyFile:      cfg.GetString("proxy_file"),
		LedgerPath:     cfg.GetString("ledger_path"),
		PollInterval:   cfg.GetDuration("poll_interval"),
		RequestTimeout: cfg.GetDuration("request_timeout"),
		LogLevel:       cfg.GetString("log.level"),
		LogFormat:      cfg.GetString("log.format"),
	}

	return loaded, loaded.validate()
}

func (c config) validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.WalletAddress == "" {
		return errors.New("wallet_address is required")
	}
	if c.PrivateKey == "" && c.PrivateKeyFile == "" {
		return errors.New("one of private_key or private_key_file is required")
	}
	if c.ProxyFile == "" {
		return errors.New("proxy_file is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}

	return nil
}
