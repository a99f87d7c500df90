// Package ratelimit caps outbound request cadence with a token bucket that
// is refilled to capacity at a fixed interval, independent of consumption.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrShutdown is returned by Acquire after Shutdown has been called.
var ErrShutdown = errors.New("rate bucket is shut down")

// Bucket is a fixed-cadence token bucket. One Bucket is constructed per run
// and shared by reference across all workers; Acquire is the only
// synchronization point between them.
type Bucket struct {
	capacity int
	tokens   chan struct{}
	done     chan struct{}
	stop     sync.Once
}

// NewBucket starts a bucket with the given capacity, refilled to capacity
// every interval by a background loop. Call Shutdown when the run ends.
func NewBucket(capacity int, interval time.Duration) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	b := &Bucket{
		capacity: capacity,
		tokens:   make(chan struct{}, capacity),
		done:     make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		b.tokens <- struct{}{}
	}
	go b.refill(interval)
	return b
}

func (b *Bucket) refill(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			for i := 0; i < b.capacity; i++ {
				select {
				case b.tokens <- struct{}{}:
				default:
				}
			}
		}
	}
}

// Acquire blocks until a token is available, the context is canceled, or the
// bucket is shut down. The context is checked before waiting so a canceled
// run never queues for a token.
func (b *Bucket) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrShutdown
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrShutdown
	case <-b.tokens:
		return nil
	}
}

// Release returns one unused token to the bucket. Extra releases beyond
// capacity are dropped.
func (b *Bucket) Release() {
	select {
	case b.tokens <- struct{}{}:
	default:
	}
}

// Shutdown stops the refill loop and unblocks pending Acquire calls.
func (b *Bucket) Shutdown() {
	b.stop.Do(func() {
		close(b.done)
	})
}
