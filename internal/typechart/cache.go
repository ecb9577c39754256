package typechart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Relations is one type's damage-relations triple: the attacking types that
// deal double, half, and no damage to it.
type Relations struct {
	DoubleDamageFrom []string
	HalfDamageFrom   []string
	NoDamageFrom     []string
}

// Source fetches the damage relations of a single type from upstream.
type Source interface {
	DamageRelations(ctx context.Context, typeName string) (Relations, error)
}

// Cache is a read-through, run-scoped cache of damage relations keyed by type
// name. Entries are never invalidated; concurrent misses on the same type
// share one upstream fetch.
type Cache struct {
	source  Source
	mu      sync.RWMutex
	entries map[string]Relations
	group   singleflight.Group

	hits    int
	fetches int
}

// NewCache creates an empty cache reading through to source.
func NewCache(source Source) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[string]Relations),
	}
}

// Get returns the relations for typeName, fetching them at most once.
// Failed fetches are not cached. The shared fetch is detached from the
// first caller's cancellation; each caller stops waiting when its own ctx
// is done.
func (c *Cache) Get(ctx context.Context, typeName string) (Relations, error) {
	c.mu.Lock()
	if rel, ok := c.entries[typeName]; ok {
		c.hits++
		c.mu.Unlock()
		return rel, nil
	}
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(typeName, func() (interface{}, error) {
		// Another caller may have filled the entry between our miss and DoChan.
		c.mu.RLock()
		rel, ok := c.entries[typeName]
		c.mu.RUnlock()
		if ok {
			return rel, nil
		}

		rel, err := c.source.DamageRelations(fetchCtx, typeName)
		if err != nil {
			return Relations{}, err
		}

		c.mu.Lock()
		c.entries[typeName] = rel
		c.fetches++
		c.mu.Unlock()
		return rel, nil
	})

	select {
	case <-ctx.Done():
		return Relations{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Relations{}, res.Err
		}
		return res.Val.(Relations), nil
	}
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Entries int
	Hits    int
	Fetches int
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Fetches: c.fetches,
	}
}
