package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/application"
	"github.com/bnema/sms-rce/internal/config"
	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/logging"
)

const (
	previewFrom = "rce"
	previewTo   = "local"
)

func newExecCmd(root *rootOptions) *cobra.Command {
	var (
		quiet   bool
		verbose bool
		channel string
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command>",
		Short: "Run a command the way a verified sender would and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(root.configPath)
			if err != nil {
				return err
			}

			replyChannel, err := domain.ParseChannel(channel)
			if err != nil {
				return err
			}

			logger := zap.NewNop()
			if verbose {
				logger, err = logging.New(cfg.Log.Level, logging.FormatConsole)
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			command := strings.Join(args, " ")
			executor := wireExecutor(cfg, logger)

			var result domain.CommandResult
			run := func(ctx context.Context) error {
				var err error
				result, err = executor.Execute(ctx, command)
				return err
			}

			if quiet {
				err = run(ctx)
			} else {
				err = runExecSpinner(ctx, cmd.ErrOrStderr(), command, cfg.Exec.Timeout, run)
			}
			if err != nil {
				return fmt.Errorf("execute %q: %w", command, err)
			}

			preview := &previewSender{}
			dispatcher := application.NewDispatcher(preview, cfg.Messages.ChunkSize, logger)
			if _, err := dispatcher.Send(ctx, replyChannel, previewFrom, previewTo, result.Text); err != nil {
				return err
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(preview.segments, "")); err != nil {
				return err
			}
			if quiet {
				return nil
			}
			_, err = fmt.Fprintln(cmd.ErrOrStderr(), execSummary(result, len(preview.segments), cfg.Messages.ChunkSize))
			return err
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the reply text")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	cmd.Flags().StringVar(&channel, "channel", string(domain.ChannelSMS), "reply channel used for segmenting")

	return cmd
}

func execSummary(result domain.CommandResult, segments, chunkSize int) string {
	parts := []string{
		"exit code " + strconv.Itoa(result.ExitCode),
		fmt.Sprintf("%d segment(s) of up to %d characters", segments, chunkSize),
		"took " + result.Duration.Round(time.Millisecond).String(),
	}
	if result.Interrupted {
		parts = append(parts, "interrupted: "+result.InterruptReason)
	}
	if result.Truncated {
		parts = append(parts, "output truncated")
	}
	return strings.Join(parts, ", ")
}

// previewSender collects segments instead of sending them.
type previewSender struct {
	segments []string
}

func (p *previewSender) SendMessage(_ context.Context, req domain.MessageRequest) (string, error) {
	p.segments = append(p.segments, req.Body())
	return strconv.Itoa(len(p.segments)), nil
}
