package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/layeredge-farmer/internal/adapters/render/status"
	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const checkProxiesConcurrency = 8

// newCheckProxiesCmd probes every proxy with a single activation attempt so
// operators can weed out dead egress paths before starting a long farm run.
func newCheckProxiesCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-proxies",
		Short: "Probe each proxy with one activation attempt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(*configFile)
			if err != nil {
				return err
			}
			return runCheckProxies(cmd, a)
		},
	}
}

func runCheckProxies(cmd *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, a)
	if err != nil {
		return err
	}

	paths, err := rt.proxies.Load(ctx)
	if err != nil {
		return fmt.Errorf("load proxy list: %w", err)
	}
	if len(paths) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No proxies found; nothing to check.")
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkProxiesConcurrency)

	for _, path := range paths {
		g.Go(func() error {
			stats := domain.WorkerStats{Proxy: path, UpdatedAt: a.now()}

			client, err := rt.newClient(path)
			if err != nil {
				a.log.Warn().Str("proxy", path.String()).Err(err).Msg("cannot build client")
				stats.ActivationFailures = 1
				stats.State = domain.WorkerStopped
				return rt.collector.Record(gctx, stats)
			}

			if _, err := client.Activate(gctx, rt.identity.Wallet); err != nil {
				a.log.Warn().Str("proxy", path.String()).Err(err).Msg("activation probe failed")
				stats.ActivationFailures = 1
				stats.State = domain.WorkerActivating
			} else {
				stats.Activations = 1
				stats.State = domain.WorkerFarming
			}

			return rt.collector.Record(gctx, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	rendered := statusadapter.Render(rt.collector.Snapshot(), statusadapter.RenderOptions{})
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
