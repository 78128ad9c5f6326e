// Package memory keeps authorization state in process memory. Nothing
// survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

var (
	_ ports.BlockedStore  = (*BlockedSet)(nil)
	_ ports.PendingStore  = (*PendingTable)(nil)
	_ ports.VerifiedStore = (*VerifiedSet)(nil)
)

type BlockedSet struct {
	mu      sync.RWMutex
	senders map[domain.Sender]time.Time
}

func NewBlockedSet() *BlockedSet {
	return &BlockedSet{senders: map[domain.Sender]time.Time{}}
}

func (s *BlockedSet) Contains(ctx context.Context, sender domain.Sender) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.senders[sender]
	return ok, nil
}

func (s *BlockedSet) Put(ctx context.Context, sender domain.Sender, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.senders[sender] = at
	return nil
}

func (s *BlockedSet) Remove(ctx context.Context, sender domain.Sender) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.senders, sender)
	return nil
}

func (s *BlockedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.senders)
}

type PendingTable struct {
	mu      sync.RWMutex
	entries map[domain.RequestID]domain.PendingVerification
}

func NewPendingTable() *PendingTable {
	return &PendingTable{entries: map[domain.RequestID]domain.PendingVerification{}}
}

func (t *PendingTable) Get(ctx context.Context, id domain.RequestID) (domain.PendingVerification, error) {
	if err := ctx.Err(); err != nil {
		return domain.PendingVerification{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	pending, ok := t.entries[id]
	if !ok {
		return domain.PendingVerification{}, domain.ErrPendingNotFound
	}
	return pending, nil
}

func (t *PendingTable) Put(ctx context.Context, pending domain.PendingVerification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[pending.RequestID] = pending
	return nil
}

func (t *PendingTable) Remove(ctx context.Context, id domain.RequestID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
	return nil
}

// FindBySender returns the sender's entries, most recently started first.
func (t *PendingTable) FindBySender(ctx context.Context, sender domain.Sender) ([]domain.PendingVerification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	matches := make([]domain.PendingVerification, 0, 1)
	for _, pending := range t.entries {
		if pending.Sender == sender {
			matches = append(matches, pending)
		}
	}
	t.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].StartedAt.Equal(matches[j].StartedAt) {
			return matches[i].RequestID < matches[j].RequestID
		}
		return matches[i].StartedAt.After(matches[j].StartedAt)
	})
	return matches, nil
}

func (t *PendingTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

type VerifiedSet struct {
	mu      sync.RWMutex
	senders map[domain.Sender]time.Time
}

func NewVerifiedSet() *VerifiedSet {
	return &VerifiedSet{senders: map[domain.Sender]time.Time{}}
}

func (s *VerifiedSet) Get(ctx context.Context, sender domain.Sender) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.senders[sender]
	return at, ok, nil
}

func (s *VerifiedSet) Put(ctx context.Context, sender domain.Sender, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.senders[sender] = at
	return nil
}

func (s *VerifiedSet) Remove(ctx context.Context, sender domain.Sender) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.senders, sender)
	return nil
}

func (s *VerifiedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.senders)
}
