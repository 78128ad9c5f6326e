package ports

import (
	"context"

	"github.com/bnema/sms-rce/internal/domain"
)

type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.CommandResult, error)
}
