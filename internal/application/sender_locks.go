package application

import (
	"hash/fnv"
	"sync"

	"github.com/bnema/sms-rce/internal/domain"
)

const defaultLockShards = 64

// senderLocks serializes work per sender. Senders hashing to the same shard
// share a mutex, unrelated senders usually do not.
type senderLocks struct {
	shards []sync.Mutex
}

func newSenderLocks(n int) *senderLocks {
	if n <= 0 {
		n = defaultLockShards
	}
	return &senderLocks{shards: make([]sync.Mutex, n)}
}

func (l *senderLocks) shard(sender domain.Sender) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sender))
	return &l.shards[h.Sum32()%uint32(len(l.shards))]
}

func (l *senderLocks) Lock(sender domain.Sender) (unlock func()) {
	mu := l.shard(sender)
	mu.Lock()
	return mu.Unlock
}
