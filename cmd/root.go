package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "rce",
		Short:         "SMS RCE: run shell commands sent from verified phone numbers",
		Long:          "rce receives messaging webhooks, verifies allow-listed senders with silent authentication and a voice fallback, runs the commands they send, and replies with the output.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file (default: ./rce.toml when present)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newConfigCmd(opts),
		newExecCmd(opts),
	)

	return rootCmd
}
