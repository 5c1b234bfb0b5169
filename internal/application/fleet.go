package application

import (
	"context"
	"errors"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WorkerFactory builds the worker for one network path, including its
// path-bound HTTP client. Construction failures skip that path only.
type WorkerFactory func(path domain.NetworkPath) (*Worker, error)

// Fleet supervises one worker per network path as a structured group.
// Workers are fully independent: they share no mutable state and a failing
// path degrades only its own worker, never a sibling.
type Fleet struct {
	factory WorkerFactory
	log     zerolog.Logger
}

func NewFleet(factory WorkerFactory, log zerolog.Logger) *Fleet {
	return &Fleet{factory: factory, log: log}
}

// Run starts every worker and blocks until the group is cancelled. An empty
// path list is a valid nothing-to-do outcome: zero workers, nil error.
func (f *Fleet) Run(ctx context.Context, paths []domain.NetworkPath) error {
	if len(paths) == 0 {
		f.log.Info().Msg("no proxies to farm over, nothing to do")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	started := 0
	for _, path := range paths {
		worker, err := f.factory(path)
		if err != nil {
			f.log.Warn().Str("proxy", path.String()).Err(err).Msg("skipping proxy")
			continue
		}

		started++
		g.Go(func() error {
			err := worker.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				f.log.Error().Str("proxy", path.String()).Err(err).Msg("worker stopped unexpectedly")
			}
			// Absorbed: one worker's exit must not take down the group.
			return nil
		})
	}

	f.log.Info().Int("workers", started).Int("proxies", len(paths)).Msg("fleet running")

	return g.Wait()
}
