package ports

import (
	"context"
	"time"

	"github.com/bnema/sms-rce/internal/domain"
)

// BlockedStore records denied senders that were already warned.
type BlockedStore interface {
	Contains(ctx context.Context, sender domain.Sender) (bool, error)
	Put(ctx context.Context, sender domain.Sender, at time.Time) error
	Remove(ctx context.Context, sender domain.Sender) error
}

// PendingStore holds verifications awaiting completion, keyed by request id.
type PendingStore interface {
	Get(ctx context.Context, id domain.RequestID) (domain.PendingVerification, error)
	Put(ctx context.Context, pending domain.PendingVerification) error
	Remove(ctx context.Context, id domain.RequestID) error
	FindBySender(ctx context.Context, sender domain.Sender) ([]domain.PendingVerification, error)
}

// VerifiedStore maps verified senders to their verification time.
type VerifiedStore interface {
	Get(ctx context.Context, sender domain.Sender) (time.Time, bool, error)
	Put(ctx context.Context, sender domain.Sender, at time.Time) error
	Remove(ctx context.Context, sender domain.Sender) error
}
