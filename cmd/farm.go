package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/layeredge-farmer/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newFarmCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "farm",
		Short: "Run one farming worker per proxy until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(*configFile)
			if err != nil {
				return err
			}
			return runFarm(cmd, a)
		},
	}
}

func runFarm(cmd *cobra.Command, a *app) error {
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
		a.log.Info().Str("proxy_file", a.config.ProxyFile).Msg("proxy list is empty")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No proxies found; nothing to farm.")
		return err
	}

	a.log.Info().
		Int("proxies", len(paths)).
		Str("wallet", a.config.WalletAddress).
		Str("base_url", a.config.BaseURL).
		Msg("starting fleet")

	if err := rt.fleet.Run(ctx, paths); err != nil {
		return err
	}

	// Reached on interrupt; leave the operator a final per-proxy summary.
	rendered := statusadapter.Render(rt.collector.Snapshot(), statusadapter.RenderOptions{
		Now:        a.now(),
		StaleAfter: 3 * a.config.PollInterval,
	})
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
