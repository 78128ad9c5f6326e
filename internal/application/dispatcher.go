package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const DefaultChunkSize = 1000

// Dispatcher delivers reply text as ordered, size-bounded segments.
type Dispatcher struct {
	sender    ports.MessageSender
	chunkSize int
	logger    *zap.Logger
}

func NewDispatcher(sender ports.MessageSender, chunkSize int, logger *zap.Logger) *Dispatcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, chunkSize: chunkSize, logger: logger}
}

// Send stops at the first failed segment. Earlier segments are not retried or
// recalled; the returned *domain.DispatchError carries how many went out.
func (d *Dispatcher) Send(ctx context.Context, channel domain.Channel, from, to, text string) (int, error) {
	parts := splitText(text, d.chunkSize)

	requests := make([]domain.MessageRequest, 0, len(parts))
	for _, part := range parts {
		req, err := domain.NewTextRequest(channel, from, to, part)
		if err != nil {
			return 0, &domain.DispatchError{Sent: 0, Total: len(parts), Err: err}
		}
		requests = append(requests, req)
	}

	for i, req := range requests {
		messageID, err := d.sender.SendMessage(ctx, req)
		if err != nil {
			d.logger.Warn("message segment failed",
				zap.String("channel", string(channel)),
				zap.String("to", to),
				zap.Int("segment", i+1),
				zap.Int("total", len(requests)),
				zap.Error(err),
			)
			return i, &domain.DispatchError{Sent: i, Total: len(requests), Err: err}
		}
		d.logger.Info("message sent",
			zap.String("message_uuid", messageID),
			zap.String("channel", string(channel)),
			zap.Int("segment", i+1),
			zap.Int("total", len(requests)),
		)
	}

	return len(requests), nil
}

// Reply answers an inbound message on the same channel, swapping the numbers.
func (d *Dispatcher) Reply(ctx context.Context, inbound domain.InboundEvent, text string) (int, error) {
	sent, err := d.Send(ctx, inbound.Channel, inbound.To, inbound.From, text)
	if err != nil {
		return sent, fmt.Errorf("reply to %s: %w", inbound.From, err)
	}
	return sent, nil
}

// splitText slices text into runs of at most size characters. The pieces
// concatenate back to text; empty text yields no pieces.
func splitText(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	parts := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
