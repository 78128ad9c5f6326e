package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const DefaultCooldown = 2 * time.Minute

const (
	replyNotAuthorized      = "This number is not authorized to use this service."
	replyVerifyLink         = "Please verify your number using mobile data: "
	replyStartFailed        = "Verification could not be started. Please try again later."
	replyCommandFailed      = "Command could not be started."
	replyVoiceCodeAccepted  = "Registration successful."
	replyVoiceCodeRejected  = "Verification failed (%s)."
	replyWaitBeforeRetrying = "Please wait %d seconds before trying again."
)

// State groups the stores behind the authorization decision.
type State struct {
	Blocked  ports.BlockedStore
	Pending  ports.PendingStore
	Verified ports.VerifiedStore
}

type AuthorizationOptions struct {
	// Cooldown is the minimum gap between two verification starts for one
	// sender.
	Cooldown   time.Duration
	LockShards int
}

// AuthorizationService decides what happens to each inbound message and runs
// the commands of verified senders. Work on one sender is serialized.
type AuthorizationService struct {
	allowList  ports.AllowListSource
	state      State
	verifier   *VerificationService
	dispatcher *Dispatcher
	executor   ports.CommandExecutor
	clock      ports.Clock
	locks      *senderLocks
	cooldown   time.Duration
	logger     *zap.Logger
}

func NewAuthorizationService(
	allowList ports.AllowListSource,
	state State,
	verifier *VerificationService,
	dispatcher *Dispatcher,
	executor ports.CommandExecutor,
	clock ports.Clock,
	opts AuthorizationOptions,
	logger *zap.Logger,
) *AuthorizationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}

	return &AuthorizationService{
		allowList:  allowList,
		state:      state,
		verifier:   verifier,
		dispatcher: dispatcher,
		executor:   executor,
		clock:      clock,
		locks:      newSenderLocks(opts.LockShards),
		cooldown:   opts.Cooldown,
		logger:     logger,
	}
}

// Authorize classifies the sender and sends whatever reply the decision
// calls for. It never runs the command.
func (s *AuthorizationService) Authorize(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error) {
	unlock := s.locks.Lock(inbound.Sender())
	defer unlock()

	return s.authorize(ctx, inbound)
}

// HandleInbound authorizes the message and, when allowed, executes its text
// and replies with the output. The call returns after the command exits.
func (s *AuthorizationService) HandleInbound(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error) {
	unlock := s.locks.Lock(inbound.Sender())
	defer unlock()

	decision, err := s.authorize(ctx, inbound)
	if err != nil || decision != domain.DecisionAllow {
		return decision, err
	}

	if strings.TrimSpace(inbound.Text) == "" {
		s.logger.Info("no command received", zap.String("sender", inbound.Sender().String()))
		return decision, nil
	}

	s.logger.Info("executing command",
		zap.String("sender", inbound.Sender().String()),
		zap.String("command", inbound.Text),
	)

	result, err := s.executor.Execute(ctx, inbound.Text)
	if err != nil {
		s.logger.Error("command failed to start", zap.String("command", inbound.Text), zap.Error(err))
		s.reply(ctx, inbound, replyCommandFailed)
		return decision, nil
	}

	s.logger.Info("command finished",
		zap.Int("exit_code", result.ExitCode),
		zap.Bool("interrupted", result.Interrupted),
		zap.Bool("truncated", result.Truncated),
		zap.Duration("duration", result.Duration),
	)

	// The command already ran. A failed reply is logged rather than returned so
	// that a webhook retry does not run it a second time.
	s.reply(ctx, inbound, result.Text)
	return decision, nil
}

// CompleteVerification handles the provider redirect for request id. On
// success the sender becomes verified; otherwise the pending entry stays with
// its stage advanced.
func (s *AuthorizationService) CompleteVerification(ctx context.Context, id domain.RequestID, code, reason string) (domain.CompletionOutcome, error) {
	pending, err := s.lookupPending(ctx, id)
	if err != nil {
		return domain.CompletionOutcome{}, err
	}

	unlock := s.locks.Lock(pending.Sender)
	defer unlock()

	// Another callback may have finished this request while we waited.
	pending, err = s.lookupPending(ctx, id)
	if err != nil {
		return domain.CompletionOutcome{}, err
	}

	return s.complete(ctx, pending, code, reason)
}

func (s *AuthorizationService) lookupPending(ctx context.Context, id domain.RequestID) (domain.PendingVerification, error) {
	pending, err := s.state.Pending.Get(ctx, id)
	if errors.Is(err, domain.ErrPendingNotFound) {
		return domain.PendingVerification{}, fmt.Errorf("%w: %s", domain.ErrUnknownVerificationRequest, id)
	}
	if err != nil {
		return domain.PendingVerification{}, fmt.Errorf("load pending verification %s: %w", id, err)
	}
	return pending, nil
}

func (s *AuthorizationService) authorize(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error) {
	sender := inbound.Sender()

	allowList, err := s.allowList.AllowList(ctx)
	if err != nil {
		return domain.DecisionDeny, fmt.Errorf("load allow list: %w", err)
	}

	if !allowList.Contains(sender) {
		return s.deny(ctx, inbound)
	}

	if err := s.state.Blocked.Remove(ctx, sender); err != nil {
		return domain.DecisionDeny, fmt.Errorf("unblock %s: %w", sender, err)
	}

	_, verified, err := s.state.Verified.Get(ctx, sender)
	if err != nil {
		return domain.DecisionDeny, fmt.Errorf("load verified state for %s: %w", sender, err)
	}
	if verified {
		s.logger.Debug("sender verified", zap.String("sender", sender.String()))
		return domain.DecisionAllow, nil
	}

	pendings, err := s.state.Pending.FindBySender(ctx, sender)
	if err != nil {
		return domain.DecisionDeny, fmt.Errorf("load pending verifications for %s: %w", sender, err)
	}

	if len(pendings) > 0 {
		latest := pendings[0]

		if latest.Stage.AcceptsCode() && isVoiceCode(inbound.Text) {
			return s.submitVoiceCode(ctx, inbound, latest)
		}

		if remaining := latest.CooldownRemaining(s.clock.Now(), s.cooldown); remaining > 0 {
			s.logger.Info("verification cooldown in effect",
				zap.String("sender", sender.String()),
				zap.Duration("remaining", remaining),
			)
			text := fmt.Sprintf(replyWaitBeforeRetrying, int64(remaining/time.Second))
			if _, err := s.dispatcher.Reply(ctx, inbound, text); err != nil {
				return domain.DecisionPending, err
			}
			return domain.DecisionPending, nil
		}
		s.logger.Info("cooldown elapsed, resending verification", zap.String("sender", sender.String()))
	} else {
		s.logger.Info("unknown number, beginning registration", zap.String("sender", sender.String()))
	}

	return s.beginVerification(ctx, inbound, pendings)
}

func (s *AuthorizationService) deny(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error) {
	sender := inbound.Sender()

	blocked, err := s.state.Blocked.Contains(ctx, sender)
	if err != nil {
		return domain.DecisionDeny, fmt.Errorf("load blocked state for %s: %w", sender, err)
	}
	if blocked {
		s.logger.Debug("blocked sender ignored", zap.String("sender", sender.String()))
		return domain.DecisionDeny, nil
	}

	// Recorded before replying so a failed reply is not repeated either.
	if err := s.state.Blocked.Put(ctx, sender, s.clock.Now()); err != nil {
		return domain.DecisionDeny, fmt.Errorf("block %s: %w", sender, err)
	}

	s.logger.Warn("unauthorized sender", zap.String("sender", sender.String()))
	s.reply(ctx, inbound, replyNotAuthorized)
	return domain.DecisionDeny, nil
}

func (s *AuthorizationService) beginVerification(ctx context.Context, inbound domain.InboundEvent, superseded []domain.PendingVerification) (domain.Decision, error) {
	sender := inbound.Sender()

	start, err := s.verifier.Start(ctx, sender)
	if err != nil {
		s.reply(ctx, inbound, replyStartFailed)
		return domain.DecisionPending, err
	}

	if _, err := s.state.Pending.Get(ctx, start.RequestID); err == nil {
		return domain.DecisionPending, fmt.Errorf("verification request id %s is already pending", start.RequestID)
	}

	for _, stale := range superseded {
		if err := s.state.Pending.Remove(ctx, stale.RequestID); err != nil {
			return domain.DecisionPending, fmt.Errorf("remove superseded verification %s: %w", stale.RequestID, err)
		}
	}

	pending := domain.PendingVerification{
		RequestID: start.RequestID,
		Sender:    sender,
		StartedAt: s.clock.Now(),
		Stage:     domain.StageSilentAuth,
		CheckURL:  start.CheckURL,
	}
	if err := s.state.Pending.Put(ctx, pending); err != nil {
		return domain.DecisionPending, fmt.Errorf("record pending verification %s: %w", start.RequestID, err)
	}

	if _, err := s.dispatcher.Reply(ctx, inbound, replyVerifyLink+start.CheckURL); err != nil {
		return domain.DecisionPending, err
	}
	return domain.DecisionPending, nil
}

func (s *AuthorizationService) submitVoiceCode(ctx context.Context, inbound domain.InboundEvent, pending domain.PendingVerification) (domain.Decision, error) {
	outcome, err := s.complete(ctx, pending, strings.TrimSpace(inbound.Text), "")
	if err != nil {
		return domain.DecisionPending, err
	}

	if outcome.Completed() {
		s.reply(ctx, inbound, replyVoiceCodeAccepted)
	} else {
		s.reply(ctx, inbound, fmt.Sprintf(replyVoiceCodeRejected, outcome.Reason))
	}
	return domain.DecisionPending, nil
}

func (s *AuthorizationService) complete(ctx context.Context, pending domain.PendingVerification, code, reason string) (domain.CompletionOutcome, error) {
	outcome := s.verifier.Complete(ctx, pending, code, reason)

	if !outcome.Completed() {
		pending.Stage = outcome.Stage
		if err := s.state.Pending.Put(ctx, pending); err != nil {
			return outcome, fmt.Errorf("update pending verification %s: %w", pending.RequestID, err)
		}
		return outcome, nil
	}

	all, err := s.state.Pending.FindBySender(ctx, pending.Sender)
	if err != nil {
		return outcome, fmt.Errorf("load pending verifications for %s: %w", pending.Sender, err)
	}
	for _, entry := range all {
		if err := s.state.Pending.Remove(ctx, entry.RequestID); err != nil {
			return outcome, fmt.Errorf("remove pending verification %s: %w", entry.RequestID, err)
		}
	}
	if err := s.state.Blocked.Remove(ctx, pending.Sender); err != nil {
		return outcome, fmt.Errorf("unblock %s: %w", pending.Sender, err)
	}
	if err := s.state.Verified.Put(ctx, pending.Sender, s.clock.Now()); err != nil {
		return outcome, fmt.Errorf("mark %s verified: %w", pending.Sender, err)
	}

	return outcome, nil
}

func (s *AuthorizationService) reply(ctx context.Context, inbound domain.InboundEvent, text string) {
	if _, err := s.dispatcher.Reply(ctx, inbound, text); err != nil {
		s.logger.Warn("reply failed", zap.String("to", inbound.From), zap.Error(err))
	}
}

// isVoiceCode reports whether text looks like a code read out by the voice
// workflow.
func isVoiceCode(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 4 || len(text) > 10 {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
