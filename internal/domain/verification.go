package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestID identifies one verification request at the provider.
type RequestID string

func ParseRequestID(raw string) (RequestID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse verification request id %q: %w", raw, err)
	}
	return RequestID(parsed.String()), nil
}

func (id RequestID) String() string {
	return string(id)
}

type WorkflowStage string

const (
	StageSilentAuth WorkflowStage = "silent_auth"
	StageVoice      WorkflowStage = "voice"
	StageExhausted  WorkflowStage = "exhausted"
)

// Next returns the stage reached after the provider advances the workflow.
func (s WorkflowStage) Next() WorkflowStage {
	switch s {
	case StageSilentAuth:
		return StageVoice
	default:
		return StageExhausted
	}
}

// AcceptsCode reports whether a code read out by the voice call can still
// complete the request. The provider keeps checking codes after the last
// workflow step has been reached.
func (s WorkflowStage) AcceptsCode() bool {
	return s == StageVoice || s == StageExhausted
}

type PendingVerification struct {
	RequestID RequestID
	Sender    Sender
	StartedAt time.Time
	Stage     WorkflowStage
	CheckURL  string
}

// CooldownRemaining is zero once the window has elapsed since StartedAt.
func (p PendingVerification) CooldownRemaining(now time.Time, window time.Duration) time.Duration {
	remaining := p.StartedAt.Add(window).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Workflow is one step of a verification chain.
type Workflow interface {
	Recipient() Sender
	isWorkflow()
}

// SilentAuthWorkflow proves possession over the device's mobile data session.
type SilentAuthWorkflow struct {
	To          Sender
	Sandbox     bool
	RedirectURL string
}

type VoiceWorkflow struct {
	To Sender
}

func (w SilentAuthWorkflow) Recipient() Sender { return w.To }
func (SilentAuthWorkflow) isWorkflow()         {}
func (w VoiceWorkflow) Recipient() Sender      { return w.To }
func (VoiceWorkflow) isWorkflow()              {}

type VerificationRequest struct {
	Brand     string
	Workflows []Workflow
}

type VerificationStart struct {
	RequestID RequestID
	CheckURL  string
}

type VerificationStatus string

const (
	VerificationCompleted   VerificationStatus = "completed"
	VerificationFailed      VerificationStatus = "failed"
	VerificationExpired     VerificationStatus = "expired"
	VerificationInvalidCode VerificationStatus = "invalid_code"
	VerificationRejected    VerificationStatus = "user_rejected"
)

func (s VerificationStatus) IsCompleted() bool {
	return s == VerificationCompleted
}

type CompletionResult string

const (
	CompletionCompleted CompletionResult = "COMPLETED"
	CompletionFailed    CompletionResult = "FAILED"
)

// CompletionOutcome reports what happened to a verification callback.
type CompletionOutcome struct {
	Result    CompletionResult
	RequestID RequestID
	Sender    Sender
	// Reason is the provider status or redirect error description. Empty when
	// the callback carried neither a code nor an error description.
	Reason string
	Stage  WorkflowStage
	// AdvanceErr is set when moving to the next workflow step failed.
	AdvanceErr error
}

func (o CompletionOutcome) Completed() bool {
	return o.Result == CompletionCompleted
}
