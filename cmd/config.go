package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	configrender "github.com/bnema/sms-rce/internal/adapters/render/config"
	"github.com/bnema/sms-rce/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(root.configPath)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg.Redacted())
			}

			rendered, err := configrender.Render(cfg)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
