package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
)

// UserCache is an explicit, bounded map of users by id. It shaves the user
// lookup off token refreshes and /me calls. Invalidation is an explicit
// call made by whoever mutates a user row; there is no TTL and no implicit
// refresh.
type UserCache struct {
	mu      sync.Mutex
	max     int
	entries map[uuid.UUID]model.User
}

// NewUserCache returns a cache holding at most max entries.
func NewUserCache(max int) *UserCache {
	if max < 1 {
		max = 1
	}
	return &UserCache{max: max, entries: make(map[uuid.UUID]model.User, max)}
}

// Get returns the cached user and whether it was present.
func (c *UserCache) Get(id uuid.UUID) (model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[id]
	return u, ok
}

// Put stores a user, evicting an arbitrary entry when full. The cache is
// small and hit-or-miss only; LRU bookkeeping buys nothing here.
func (c *UserCache) Put(u model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[u.ID]; !ok && len(c.entries) >= c.max {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[u.ID] = u
}

// Invalidate drops a user from the cache.
func (c *UserCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
