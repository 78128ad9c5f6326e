package application

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bnema/sms-rce/internal/domain"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// outbox records what the dispatcher handed to the messaging provider.
type outbox struct {
	mu       sync.Mutex
	requests []domain.MessageRequest
	failAt   int
	failErr  error
}

func (o *outbox) send(_ context.Context, req domain.MessageRequest) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failErr != nil && len(o.requests)+1 == o.failAt {
		return "", o.failErr
	}
	o.requests = append(o.requests, req)
	return "msg-" + strconv.Itoa(len(o.requests)), nil
}

func (o *outbox) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.requests))
	for _, req := range o.requests {
		out = append(out, req.Body())
	}
	return out
}

func (o *outbox) all() []domain.MessageRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.MessageRequest(nil), o.requests...)
}

// mutableAllowList lets a test change the allow-list between calls.
type mutableAllowList struct {
	mu   sync.Mutex
	list domain.AllowList
}

func (m *mutableAllowList) AllowList(context.Context) (domain.AllowList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list, nil
}

func (m *mutableAllowList) Set(numbers ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = domain.NewAllowList(numbers...)
}
