package store

import (
	"encoding/json"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"apnode/internal/domain"
)

// DefaultOutboxCacheSize is used when a non-positive size is configured.
const DefaultOutboxCacheSize = 256

// OutboxCache is a read-through LRU of decoded outbox activities. The mailbox
// store stays authoritative; callers invalidate after every outbox append.
type OutboxCache struct {
	mailbox domain.MailboxStore
	cache   *lru.Cache[domain.Username, []domain.Activity]

	mu  sync.Mutex
	gen map[domain.Username]uint64
}

// NewOutboxCache wraps mailbox with an LRU holding up to size owners.
func NewOutboxCache(mailbox domain.MailboxStore, size int) (*OutboxCache, error) {
	if size <= 0 {
		size = DefaultOutboxCacheSize
	}
	c, err := lru.New[domain.Username, []domain.Activity](size)
	if err != nil {
		return nil, err
	}
	return &OutboxCache{mailbox: mailbox, cache: c, gen: make(map[domain.Username]uint64)}, nil
}

// Activities returns owner's outbox activities in append order.
func (c *OutboxCache) Activities(owner domain.Username) ([]domain.Activity, error) {
	owner = owner.Normalize()
	if acts, ok := c.cache.Get(owner); ok {
		return cloneActivities(acts), nil
	}

	before := c.generation(owner)
	entries, err := c.mailbox.List(owner, domain.Outbox)
	if err != nil {
		return nil, err
	}
	acts := make([]domain.Activity, 0, len(entries))
	for _, e := range entries {
		var rec domain.OutboxRecord
		if err := json.Unmarshal(e.Payload, &rec); err != nil {
			return nil, fmt.Errorf("outbox entry %s: %w", e.ID, err)
		}
		acts = append(acts, rec.Activity)
	}

	// An append that raced with the load bumps the generation; caching the
	// older view would hide it until eviction.
	c.mu.Lock()
	if c.gen[owner] == before {
		c.cache.Add(owner, acts)
	}
	c.mu.Unlock()
	return cloneActivities(acts), nil
}

// Invalidate drops owner's cached view.
func (c *OutboxCache) Invalidate(owner domain.Username) {
	owner = owner.Normalize()
	c.mu.Lock()
	c.gen[owner]++
	c.cache.Remove(owner)
	c.mu.Unlock()
}

// Len reports how many owners are cached.
func (c *OutboxCache) Len() int { return c.cache.Len() }

func (c *OutboxCache) generation(owner domain.Username) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[owner]
}

func cloneActivities(in []domain.Activity) []domain.Activity {
	return append([]domain.Activity(nil), in...)
}

// Compile-time assertion that OutboxCache implements domain.OutboxIndex.
var _ domain.OutboxIndex = (*OutboxCache)(nil)
