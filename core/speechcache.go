package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/koscakluka/quizvox-core/core/audio"
)

// SpeechCache maps segment keys to synthesized clips. Entries are created
// pending when pregeneration is requested and become ready when synthesis
// completes; completion releases any bounded-wait callers. The cache is
// session-scoped: Clear drops everything when a quiz ends or is abandoned.
//
// Cache validity relies on the segment key invariant: the same key always
// maps to the same text within one session.
type SpeechCache struct {
	mu      sync.Mutex
	entries map[string]*speechCacheEntry
}

type speechCacheEntry struct {
	clip *audio.Clip
	// claimed marks that a generation job owns this entry. An unclaimed
	// entry is a placeholder created by a waiter before any pregeneration
	// request arrived.
	claimed bool
	ready   chan struct{}
}

func NewSpeechCache() *SpeechCache {
	return &SpeechCache{entries: map[string]*speechCacheEntry{}}
}

// Begin registers a generation job for key and reports whether the caller
// should run synthesis. A key that is already being generated or already
// ready returns false, making pregeneration idempotent per key.
func (c *SpeechCache) Begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.entries[key] = &speechCacheEntry{claimed: true, ready: make(chan struct{})}
		return true
	}

	if !entry.claimed {
		entry.claimed = true
		return true
	}

	return false
}

// Complete stores the finished clip and releases waiters.
func (c *SpeechCache) Complete(key string, clip *audio.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		entry = &speechCacheEntry{claimed: true, ready: make(chan struct{})}
		c.entries[key] = entry
	}

	if entry.clip == nil {
		entry.clip = clip
		entry.claimed = true
		close(entry.ready)
	}
}

// Fail drops the pending entry so a later attempt can retry, and releases
// waiters empty-handed. A cache miss is not an error to callers; they fall
// back to inline synthesis.
func (c *SpeechCache) Fail(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.clip != nil {
		return
	}

	delete(c.entries, key)
	close(entry.ready)
}

// Clip returns the ready clip for key, or false when the key is absent or
// still pending.
func (c *SpeechCache) Clip(key string) (*audio.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.clip == nil {
		return nil, false
	}
	return entry.clip, true
}

func (c *SpeechCache) IsReady(key string) bool {
	_, ready := c.Clip(key)
	return ready
}

// AwaitReady blocks until the entry for key completes, the timeout elapses,
// or the context ends, and reports whether the clip is ready. Waiting is
// released by entry completion rather than polling.
func (c *SpeechCache) AwaitReady(ctx context.Context, key string, timeout time.Duration) bool {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &speechCacheEntry{ready: make(chan struct{})}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-entry.ready:
		return c.IsReady(key)
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Clear destroys all entries. Pending entries are released like failures.
func (c *SpeechCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.clip == nil {
			close(entry.ready)
		}
		delete(c.entries, key)
	}
}

func (c *SpeechCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
