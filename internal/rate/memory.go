package rate

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const (
	memoryShardCount = 64

	// sweepOpInterval is how many increments a shard absorbs between
	// opportunistic sweeps of its stale buckets.
	sweepOpInterval = 256
)

type bucket struct {
	windowStart int64 // unix nanos
	windowNanos int64
	count       int64
}

type memoryShard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	ops     int
}

// MemoryStore is the single-node reference BucketStore: fixed-window counters
// in a sharded map, one mutex per shard. Stale buckets are swept opportunistically
// on access and, when a sweep interval is configured, by a background ticker.
type MemoryStore struct {
	shards [memoryShardCount]*memoryShard
	now    func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	return newMemoryStore(sweepInterval, time.Now)
}

func newMemoryStore(sweepInterval time.Duration, now func() time.Time) *MemoryStore {
	s := &MemoryStore{
		now:  now,
		done: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &memoryShard{buckets: make(map[string]*bucket)}
	}

	if sweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweepInterval)
	}

	return s
}

// Incr describes the incr operation and its observable behavior.
//
// Incr may return an error when input validation, dependency calls, or security checks fail.
// Incr does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	shard := s.shard(key)
	now := s.now().UnixNano()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.ops++
	if shard.ops >= sweepOpInterval {
		shard.ops = 0
		shard.sweepLocked(now)
	}

	b, ok := shard.buckets[key]
	if !ok || now >= b.windowStart+b.windowNanos {
		shard.buckets[key] = &bucket{
			windowStart: now,
			windowNanos: int64(window),
			count:       1,
		}
		return 1, window, nil
	}

	b.count++
	return b.count, time.Duration(b.windowStart + b.windowNanos - now), nil
}

// Remove describes the remove operation and its observable behavior.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
// Remove does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	shard := s.shard(key)
	shard.mu.Lock()
	delete(shard.buckets, key)
	shard.mu.Unlock()
	return nil
}

// Len returns the number of live buckets across all shards. Diagnostic only.
func (s *MemoryStore) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.buckets)
		shard.mu.Unlock()
	}
	return total
}

// Sweep removes every bucket whose window elapsed. Returns the number removed.
func (s *MemoryStore) Sweep() int {
	now := s.now().UnixNano()
	removed := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		removed += shard.sweepLocked(now)
		shard.mu.Unlock()
	}
	return removed
}

// Close stops the background sweeper, if one was started.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShardCount]
}

func (sh *memoryShard) sweepLocked(now int64) int {
	removed := 0
	for key, b := range sh.buckets {
		if now >= b.windowStart+b.windowNanos {
			delete(sh.buckets, key)
			removed++
		}
	}
	return removed
}
