package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

// ReasonCheckFailed replaces provider errors raised while checking a code.
const ReasonCheckFailed = "verification check failed"

// DefaultFraudCheckTimeout bounds the advisory SIM swap lookup, including
// its network authorization polling.
const DefaultFraudCheckTimeout = 5 * time.Second

type VerificationOptions struct {
	Brand             string
	RedirectURL       string
	SilentAuthSandbox bool
	FraudCheckTimeout time.Duration
}

// VerificationService drives the silent auth then voice workflow chain.
type VerificationService struct {
	provider ports.VerificationProvider
	fraud    ports.FraudChecker
	opts     VerificationOptions
	logger   *zap.Logger
}

// NewVerificationService accepts a nil fraud checker, which skips the SIM
// swap lookup.
func NewVerificationService(provider ports.VerificationProvider, fraud ports.FraudChecker, opts VerificationOptions, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{provider: provider, fraud: fraud, opts: opts, logger: logger}
}

func (s *VerificationService) Start(ctx context.Context, sender domain.Sender) (domain.VerificationStart, error) {
	s.checkSimSwap(ctx, sender)

	req := domain.VerificationRequest{
		Brand: s.opts.Brand,
		Workflows: []domain.Workflow{
			domain.SilentAuthWorkflow{To: sender, Sandbox: s.opts.SilentAuthSandbox, RedirectURL: s.opts.RedirectURL},
			domain.VoiceWorkflow{To: sender},
		},
	}

	start, err := s.provider.StartVerification(ctx, req)
	if err != nil {
		return domain.VerificationStart{}, fmt.Errorf("start verification for %s: %w", sender, err)
	}

	s.logger.Info("verification sent",
		zap.String("request_id", start.RequestID.String()),
		zap.String("sender", sender.String()),
	)
	return start, nil
}

// checkSimSwap is advisory. Its outcome is logged and never blocks the start.
func (s *VerificationService) checkSimSwap(ctx context.Context, sender domain.Sender) {
	if s.fraud == nil {
		return
	}

	timeout := s.opts.FraudCheckTimeout
	if timeout <= 0 {
		timeout = DefaultFraudCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	swapped, err := s.fraud.CheckSimSwap(ctx, sender)
	switch {
	case err != nil:
		s.logger.Warn("sim swap check failed", zap.String("sender", sender.String()), zap.Error(err))
	case swapped:
		s.logger.Warn("sim swap detected", zap.String("sender", sender.String()))
	}
}

// Complete checks code when one is present. Anything short of a completed
// check advances the workflow for the same request id. Complete never
// returns an error: check and advance failures land in the outcome.
func (s *VerificationService) Complete(ctx context.Context, pending domain.PendingVerification, code, reason string) domain.CompletionOutcome {
	outcome := domain.CompletionOutcome{
		RequestID: pending.RequestID,
		Sender:    pending.Sender,
		Stage:     pending.Stage,
	}

	if code != "" {
		status, err := s.provider.CheckCode(ctx, pending.RequestID, code)
		switch {
		case err != nil:
			s.logger.Error("verification check failed",
				zap.String("request_id", pending.RequestID.String()),
				zap.Error(err),
			)
			reason = ReasonCheckFailed
		case status.IsCompleted():
			outcome.Result = domain.CompletionCompleted
			s.logger.Info("registered number",
				zap.String("sender", pending.Sender.String()),
				zap.String("request_id", pending.RequestID.String()),
			)
			return outcome
		default:
			reason = string(status)
		}
	}

	outcome.Result = domain.CompletionFailed
	outcome.Reason = reason

	if pending.Stage == domain.StageExhausted {
		s.logger.Info("verification failed, no workflow left to advance",
			zap.String("request_id", pending.RequestID.String()),
			zap.String("reason", reason),
		)
		return outcome
	}

	s.logger.Info("verification failed, moving to next workflow",
		zap.String("request_id", pending.RequestID.String()),
		zap.String("stage", string(pending.Stage)),
		zap.String("reason", reason),
	)

	if err := s.provider.NextWorkflow(ctx, pending.RequestID); err != nil {
		outcome.AdvanceErr = err
		if errors.Is(err, domain.ErrNoFurtherWorkflow) {
			outcome.Stage = domain.StageExhausted
		}
		s.logger.Warn("could not advance workflow",
			zap.String("request_id", pending.RequestID.String()),
			zap.Error(err),
		)
		return outcome
	}

	outcome.Stage = pending.Stage.Next()
	return outcome
}
