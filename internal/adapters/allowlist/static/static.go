// Package static serves an allow-list fixed at construction time.
package static

import (
	"context"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

var _ ports.AllowListSource = (*Source)(nil)

type Source struct {
	list domain.AllowList
}

func New(numbers ...string) *Source {
	return &Source{list: domain.NewAllowList(numbers...)}
}

func (s *Source) AllowList(ctx context.Context) (domain.AllowList, error) {
	if err := ctx.Err(); err != nil {
		return domain.AllowList{}, err
	}
	return s.list, nil
}
