package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 5 * time.Second

type WorkerConfig struct {
	Proxy        domain.NetworkPath
	Wallet       domain.WalletAddress
	PollInterval time.Duration
	API          ports.DashboardAPI
	Clock        ports.Clock
	Ledger       ports.StatsLedger
	Logger       zerolog.Logger
}

// Worker owns the farming state machine for one network path:
//
//	Unauthenticated -> Activating -> Farming -> (failure) -> Activating -> ...
//
// Activation retries forever on a fixed interval; there is deliberately no
// attempt cap, since an unattended agent that gives up is worse than one
// that keeps knocking. A liveness report that is not accepted discards the
// session handle and re-activates. The loop only ends on cancellation.
type Worker struct {
	proxy    domain.NetworkPath
	wallet   domain.WalletAddress
	interval time.Duration
	api      ports.DashboardAPI
	clock    ports.Clock
	ledger   ports.StatsLedger
	log      zerolog.Logger

	// stats is owned by the Run goroutine; only copies leave the worker.
	stats domain.WorkerStats
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Proxy == "" {
		return nil, errors.New("worker needs a network path")
	}
	if cfg.Wallet == "" {
		return nil, errors.New("worker needs a wallet address")
	}
	if cfg.API == nil {
		return nil, errors.New("worker needs a dashboard api")
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Worker{
		proxy:    cfg.Proxy,
		wallet:   cfg.Wallet,
		interval: interval,
		api:      cfg.API,
		clock:    clock,
		ledger:   cfg.Ledger,
		log:      cfg.Logger.With().Str("proxy", cfg.Proxy.String()).Logger(),
		stats:    domain.WorkerStats{Proxy: cfg.Proxy},
	}, nil
}

// Run drives the state machine until ctx is cancelled. The returned error is
// always the context's; per-attempt failures are absorbed and retried.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("poll_interval", w.interval).Msg("worker starting")

	defer func() {
		w.stats.State = domain.WorkerStopped
		w.publish(context.WithoutCancel(ctx))
		w.log.Info().Msg("worker stopped")
	}()

	for {
		handle, err := w.awaitActivation(ctx)
		if err != nil {
			return err
		}

		if err := w.farm(ctx, handle); err != nil {
			return err
		}
		// Session invalidated; handle is discarded and a fresh one acquired.
	}
}

// awaitActivation loops in the Activating state until the dashboard hands
// out a session, waiting one poll interval between attempts.
func (w *Worker) awaitActivation(ctx context.Context) (domain.SessionHandle, error) {
	w.stats.State = domain.WorkerActivating

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.SessionHandle{}, err
		}

		handle, err := w.api.Activate(ctx, w.wallet)
		if err == nil {
			w.stats.Activations++
			w.publish(ctx)
			w.log.Info().
				Int64("last_start_time", handle.LastStartTime).
				Int("attempt", attempt).
				Msg("node activated")
			return handle, nil
		}
		if ctx.Err() != nil {
			return domain.SessionHandle{}, ctx.Err()
		}

		w.stats.ActivationFailures++
		w.publish(ctx)
		w.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", w.interval).
			Msg("activation failed")

		if err := w.clock.Sleep(ctx, w.interval); err != nil {
			return domain.SessionHandle{}, err
		}
	}
}

// farm reports liveness on the fixed interval for as long as the session is
// accepted. It returns nil once the session is presumed invalid (the caller
// re-activates) and an error only on cancellation. The first report goes out
// immediately on entry.
func (w *Worker) farm(ctx context.Context, handle domain.SessionHandle) error {
	w.stats.State = domain.WorkerFarming

	for {
		outcome, err := w.api.ReportLiveness(ctx, w.wallet, handle)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn().Err(err).Msg("liveness report failed")
			outcome = domain.LivenessOutcome{Status: domain.LivenessUnreachable}
		}

		if !outcome.Accepted() {
			w.stats.ReportsFailed++
			w.publish(ctx)
			w.log.Warn().
				Str("status", string(outcome.Status)).
				Int64("last_start_time", handle.LastStartTime).
				Msg("liveness not accepted, session presumed invalid")

			if err := w.clock.Sleep(ctx, w.interval); err != nil {
				return err
			}
			return nil
		}

		w.stats.ReportsAccepted++
		event := w.log.Info().Int64("last_start_time", handle.LastStartTime)
		if outcome.PointsKnown {
			// nodePoints is the account's running total, not a delta.
			w.stats.Points = outcome.Points
			event = event.Float64("points", outcome.Points)
		}
		event.Msg("liveness accepted")
		w.publish(ctx)

		if err := w.clock.Sleep(ctx, w.interval); err != nil {
			return err
		}
	}
}

func (w *Worker) publish(ctx context.Context) {
	if w.ledger == nil {
		return
	}

	w.stats.UpdatedAt = w.clock.Now()
	if err := w.ledger.Record(ctx, w.stats); err != nil && ctx.Err() == nil {
		w.log.Warn().Err(err).Msg("record worker stats")
	}
}
