// Package shell runs command text through a system shell and captures its
// combined output.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const (
	DefaultShell     = "sh"
	DefaultWaitDelay = 2 * time.Second

	// TruncatedNotice is appended to replies whose output hit the byte cap.
	TruncatedNotice = "[output truncated]"
)

var _ ports.CommandExecutor = (*Executor)(nil)

type Options struct {
	Shell string
	// Timeout bounds a single command. Zero disables it.
	Timeout time.Duration
	// MaxOutputBytes caps captured output. Zero disables it.
	MaxOutputBytes int
	// WaitDelay is how long output pipes may stay open after the shell exits.
	WaitDelay time.Duration
}

type Executor struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Executor {
	if strings.TrimSpace(opts.Shell) == "" {
		opts.Shell = DefaultShell
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = DefaultWaitDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{opts: opts, logger: logger}
}

// Execute blocks until the command exits or ctx ends. Interruption is not an
// error: the partial output and the reason come back in the result. An error
// is returned only when the shell could not be run at all.
func (e *Executor) Execute(ctx context.Context, command string) (domain.CommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return domain.CommandResult{}, domain.ErrEmptyCommand
	}

	runCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeoutCause(ctx, e.opts.Timeout, fmt.Errorf("timeout after %s", e.opts.Timeout))
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.opts.Shell, "-c", command)
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = e.opts.WaitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	out := newCapture(e.opts.MaxOutputBytes)
	started := time.Now()

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return domain.CommandResult{}, fmt.Errorf("start %s: %w", e.opts.Shell, err)
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		out.consume(pr)
	}()

	waitErr := cmd.Wait()
	_ = pw.Close()
	<-readDone

	result := domain.CommandResult{
		Truncated: out.truncated,
		Duration:  time.Since(started),
	}

	if runCtx.Err() != nil {
		reason := context.Cause(runCtx).Error()
		result.Interrupted = true
		result.InterruptReason = reason
		result.ExitCode = -1
		result.Text = withTruncation(domain.InterruptedOutput(out.String(), reason), out.truncated)
		e.logger.Warn("command interrupted",
			zap.String("command", command),
			zap.String("reason", reason),
			zap.Duration("duration", result.Duration),
		)
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// The shell exited but a background child still held the output open.
		_ = killProcessGroup(cmd)
		e.logger.Debug("output pipe outlived the shell", zap.String("command", command))
	default:
		return domain.CommandResult{}, fmt.Errorf("wait for %s: %w", e.opts.Shell, waitErr)
	}

	result.Text = withTruncation(domain.CommandOutput(out.String(), result.ExitCode), out.truncated)
	e.logger.Debug("command exited",
		zap.Int("exit_code", result.ExitCode),
		zap.Int("output_bytes", out.Len()),
		zap.Bool("truncated", out.truncated),
	)
	return result, nil
}

func withTruncation(text string, truncated bool) string {
	if !truncated {
		return text
	}
	return text + "\n" + TruncatedNotice
}
