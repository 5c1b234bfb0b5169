package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "farmctl",
		Short:         "farmctl: keep LayerEdge node sessions alive across a proxy fleet",
		Long:          "farmctl runs one farming worker per proxy endpoint. Each worker activates a node session against the LayerEdge dashboard, reports liveness on a fixed interval, and transparently re-activates when the session is invalidated.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to farmctl.toml (default: ~/.farmctl/farmctl.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newFarmCmd(&configFile),
		newCheckProxiesCmd(&configFile),
	)

	return rootCmd
}
