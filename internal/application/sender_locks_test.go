package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderLocksSameSenderSameShard(t *testing.T) {
	t.Parallel()

	locks := newSenderLocks(16)
	assert.Same(t, locks.shard("15550001111"), locks.shard("15550001111"))
	assert.Len(t, locks.shards, 16)
}

func TestSenderLocksDefaultShardCount(t *testing.T) {
	t.Parallel()

	assert.Len(t, newSenderLocks(0).shards, defaultLockShards)
}

func TestSenderLocksExcludeConcurrentHolders(t *testing.T) {
	t.Parallel()

	locks := newSenderLocks(4)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("15550001111")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
