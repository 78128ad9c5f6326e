package ports

import (
	"context"

	"github.com/bnema/sms-rce/internal/domain"
)

type MessageSender interface {
	SendMessage(ctx context.Context, req domain.MessageRequest) (messageID string, err error)
}
