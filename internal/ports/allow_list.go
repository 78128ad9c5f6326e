package ports

import (
	"context"

	"github.com/bnema/sms-rce/internal/domain"
)

type AllowListSource interface {
	AllowList(ctx context.Context) (domain.AllowList, error)
}
