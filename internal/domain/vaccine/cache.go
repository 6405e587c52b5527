package vaccine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/exp/slog"
)

// Entry is a cached payload with its record id.
type Entry struct {
	RecordID uint64
	Payload  Payload
}

// Cache is the local record cache: an in-memory view over a durable Store.
// It is append-only, safe for concurrent reads, and keyed by freshly
// assigned record ids so writes never collide.
type Cache struct {
	store   Store
	log     *slog.Logger
	mu      sync.RWMutex
	entries map[uint64]Payload
}

// NewCache creates an empty cache. A nil store keeps entries in memory only.
func NewCache(store Store, log *slog.Logger) *Cache {
	return &Cache{
		store:   store,
		log:     log.With("component", "record_cache"),
		entries: make(map[uint64]Payload),
	}
}

// Load merges the durable entries into memory. On failure the cache stays
// usable with what it already holds.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	stored, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn("failed to load record cache", "error", err)
		return fmt.Errorf("load cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range stored {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			c.log.Warn("skipping cache entry with bad key", "key", key)
			continue
		}
		c.entries[id] = p
	}
	c.log.Debug("record cache loaded", "entries", len(c.entries))
	return nil
}

// Get returns the payload cached for id.
func (c *Cache) Get(id uint64) (Payload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[id]
	return p, ok
}

// Put records p under id in memory and in the durable store. The memory
// entry is kept even if the store write fails.
func (c *Cache) Put(ctx context.Context, id uint64, p Payload) error {
	c.mu.Lock()
	c.entries[id] = p
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, strconv.FormatUint(id, 10), p); err != nil {
		return fmt.Errorf("save cache entry %d: %w", id, err)
	}
	return nil
}

// Entries returns all cached payloads ordered by ascending record id.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for id, p := range c.entries {
		out = append(out, Entry{RecordID: id, Payload: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID < out[j].RecordID })
	return out
}

// Len is the number of cached payloads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
