// internal/infrastructure/cache/memory.go
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// ErrWaitTimeout is returned to a caller that gave up waiting on another
// request's in-flight search for the same fingerprint
var ErrWaitTimeout = errors.New("timed out waiting for in-flight search")

type cacheEntry struct {
	result    *entity.AggregateResult
	expiresAt time.Time
}

type inflightSearch struct {
	done   chan struct{}
	result *entity.AggregateResult
	err    error
}

// Memory is an in-process ResultCache with TTL staleness and single-flight
// collapse of concurrent identical fingerprints. Entries are replaced
// wholesale, never mutated in place, so readers holding a result are safe.
type Memory struct {
	mu          sync.Mutex
	entries     map[string]*cacheEntry
	inflight    map[string]*inflightSearch
	waitTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

// NewMemory creates a cache whose waiters give up after waitTimeout, so one
// slow search cannot starve unrelated callers of the same key
func NewMemory(waitTimeout time.Duration) *Memory {
	c := &Memory{
		entries:     make(map[string]*cacheEntry),
		inflight:    make(map[string]*inflightSearch),
		waitTimeout: waitTimeout,
		done:        make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Close stops the background sweeper
func (c *Memory) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Get returns the cached aggregate when present and still fresh
func (c *Memory) Get(fingerprint string) (*entity.AggregateResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[fingerprint]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Put stores the aggregate, overwriting any previous entry (last writer wins)
func (c *Memory) Put(fingerprint string, result *entity.AggregateResult, ttl time.Duration) {
	c.mu.Lock()
	c.entries[fingerprint] = &cacheEntry{result: result, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Fetch returns a fresh cached aggregate, joins an in-flight search for the
// same fingerprint, or computes fn itself. Exactly one caller computes; the
// rest wait on its outcome bounded by the wait timeout. The boolean reports
// whether the value came from cache.
func (c *Memory) Fetch(ctx context.Context, fingerprint string, ttl time.Duration,
	fn func(ctx context.Context) (*entity.AggregateResult, error)) (*entity.AggregateResult, bool, error) {

	c.mu.Lock()
	if entry, ok := c.entries[fingerprint]; ok && time.Now().Before(entry.expiresAt) {
		result := entry.result
		c.mu.Unlock()
		return result, true, nil
	}

	if flight, ok := c.inflight[fingerprint]; ok {
		c.mu.Unlock()
		timer := time.NewTimer(c.waitTimeout)
		defer timer.Stop()
		select {
		case <-flight.done:
			return flight.result, false, flight.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-timer.C:
			return nil, false, ErrWaitTimeout
		}
	}

	flight := &inflightSearch{done: make(chan struct{})}
	c.inflight[fingerprint] = flight
	c.mu.Unlock()

	result, err := fn(ctx)

	c.mu.Lock()
	flight.result = result
	flight.err = err
	if err == nil && result != nil {
		c.entries[fingerprint] = &cacheEntry{result: result, expiresAt: time.Now().Add(ttl)}
	}
	// release the guard whether the search succeeded or failed, so later
	// requests for this fingerprint are never blocked indefinitely
	delete(c.inflight, fingerprint)
	c.mu.Unlock()

	close(flight.done)
	return result, false, err
}

func (c *Memory) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
