package ports

import (
	"context"

	"github.com/bnema/sms-rce/internal/domain"
)

type VerificationProvider interface {
	StartVerification(ctx context.Context, req domain.VerificationRequest) (domain.VerificationStart, error)
	CheckCode(ctx context.Context, id domain.RequestID, code string) (domain.VerificationStatus, error)
	NextWorkflow(ctx context.Context, id domain.RequestID) error
}

// FraudChecker reports whether the number's SIM was swapped recently.
type FraudChecker interface {
	CheckSimSwap(ctx context.Context, sender domain.Sender) (bool, error)
}
