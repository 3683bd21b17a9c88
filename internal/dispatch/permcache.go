package dispatch

import (
	"container/list"
	"sync"
	"time"
)

const (
	permCacheTTL = 30 * time.Second
	permCacheCap = 500
)

type permEntry struct {
	key      string
	allowed  bool
	cachedAt time.Time
	elem     *list.Element
}

// permCache caches permission verdicts: TTL 30s, cap 500,
// keyed on (sessionID, senderID, chatID, permission level). chatID is part
// of the key because group-admin status is resolved per chat.
type permCache struct {
	mu      sync.Mutex
	entries map[string]*permEntry
	order   *list.List
}

func newPermCache() *permCache {
	return &permCache{
		entries: make(map[string]*permEntry),
		order:   list.New(),
	}
}

func permKey(sessionID, senderID, chatID string, category Category, perm RequiredPermission) string {
	return sessionID + "\x00" + senderID + "\x00" + chatID + "\x00" + string(category) + "\x00" + string(rune('0'+perm))
}

func (c *permCache) get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false, false
	}
	if time.Since(e.cachedAt) > permCacheTTL {
		c.removeLocked(e)
		return false, false
	}
	c.order.MoveToFront(e.elem)
	return e.allowed, true
}

func (c *permCache) put(key string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.allowed = allowed
		e.cachedAt = time.Now()
		c.order.MoveToFront(e.elem)
		return
	}

	e := &permEntry{key: key, allowed: allowed, cachedAt: time.Now()}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e

	for len(c.entries) > permCacheCap {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeLocked(back.Value.(*permEntry))
	}
}

func (c *permCache) removeLocked(e *permEntry) {
	c.order.Remove(e.elem)
	delete(c.entries, e.key)
}
