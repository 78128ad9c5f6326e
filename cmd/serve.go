package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/sms-rce/internal/config"
	"github.com/bnema/sms-rce/internal/logging"
	"github.com/bnema/sms-rce/internal/version"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := wireApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			logger.Info("starting rce",
				zap.String("version", version.Version),
				zap.String("addr", app.server.Addr()),
				zap.String("redirect_url", cfg.RedirectURL()),
				zap.Int("allow_list", len(cfg.AllowList.Numbers)),
				zap.String("allow_list_file", cfg.AllowList.File),
			)

			return runApp(ctx, app)
		},
	}
}

// runApp serves until ctx ends or one of the components fails.
func runApp(ctx context.Context, app *app) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.server.Run(ctx)
	})
	if app.watchAllowList != nil {
		g.Go(func() error {
			if err := app.watchAllowList(ctx); err != nil {
				return fmt.Errorf("watch allow-list: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
