// Package groupcache implements the GroupCache component:
// a TTL'd, size-bounded, event-invalidated cache in front of a
// SocketDriver's group metadata fetch.
package groupcache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/whatsapp"
)

const (
	entryTTL = 60 * time.Second
	maxSize  = 300
)

// ErrForbidden and ErrRateLimited are the two classified failure shapes a
// Fetcher must return so Cache can apply its fallback policy; any other
// error is raised unchanged.
var (
	ErrForbidden   = errors.New("groupcache: bot not in group")
	ErrRateLimited = errors.New("groupcache: rate limited")
)

// Fetcher is the subset of SocketDriver the cache needs, narrowed for
// testability.
type Fetcher interface {
	GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error)
}

type cacheEntry struct {
	meta    *groupmeta.Metadata
	elem    *list.Element
	groupID string
}

// Cache is the GroupCache implementation. One Cache instance is shared
// across every group the fleet observes; it is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   *list.List // front = most recently used
}

// New builds an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
	}
}

// Get returns group metadata for groupID, cache-first unless forceRefresh.
func (c *Cache) Get(ctx context.Context, driver Fetcher, groupID string, forceRefresh bool) (*groupmeta.Metadata, error) {
	if !forceRefresh {
		if meta, ok := c.lookup(groupID); ok {
			return meta, nil
		}
	}

	meta, err := driver.GroupMetadata(ctx, groupID)
	switch {
	case errors.Is(err, ErrForbidden):
		c.evict(groupID)
		return nil, nil
	case errors.Is(err, ErrRateLimited):
		if stale, ok := c.lookupAny(groupID); ok {
			stale.Stale = true
			return stale, nil
		}
		return groupmeta.RateLimitedFallback(groupID), nil
	case err != nil:
		return nil, err
	}

	normalize(meta)
	c.put(groupID, meta)
	return meta, nil
}

// OnGroupParticipantsUpdate handles a group-participants.update event: any
// add/remove/promote/demote forces a refetch on next Get.
func (c *Cache) OnGroupParticipantsUpdate(update whatsapp.GroupParticipantsUpdate) {
	c.evict(update.GroupJID)
}

// OnGroupsUpdate handles a groups.update event: a setting change
// (announce/restrict present) evicts; anything else merges into the
// cached entry if one exists, where Subject is the one field merged.
func (c *Cache) OnGroupsUpdate(update whatsapp.GroupUpdate) {
	if update.Announce != nil || update.Restrict != nil {
		c.evict(update.GroupJID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[update.GroupJID]
	if !ok {
		return
	}
	if update.Subject != nil {
		e.meta.Subject = *update.Subject
	}
}

// lookup returns the cached entry only while it's within its TTL; an
// expired entry counts as a miss but is left in place so a subsequent
// rate-limited fetch can still serve it as a stale fallback.
func (c *Cache) lookup(groupID string) (*groupmeta.Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[groupID]
	if !ok {
		return nil, false
	}
	if time.Since(e.meta.FetchedAt) > entryTTL {
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e.meta, true
}

// lookupAny returns the cached entry regardless of TTL, used by the
// rate-limit fallback path.
func (c *Cache) lookupAny(groupID string) (*groupmeta.Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[groupID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e.meta, true
}

func (c *Cache) put(groupID string, meta *groupmeta.Metadata) {
	meta.FetchedAt = time.Now()
	meta.Stale = false

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[groupID]; ok {
		e.meta = meta
		c.order.MoveToFront(e.elem)
		return
	}

	elem := c.order.PushFront(groupID)
	c.entries[groupID] = &cacheEntry{meta: meta, elem: elem, groupID: groupID}

	for len(c.entries) > maxSize {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeLocked(back.Value.(string))
	}
}

func (c *Cache) evict(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(groupID)
}

func (c *Cache) removeLocked(groupID string) {
	e, ok := c.entries[groupID]
	if !ok {
		return
	}
	c.order.Remove(e.elem)
	delete(c.entries, groupID)
}

// normalize ensures every participant carries both a chat-addressable id
// and, when resolvable, a phone-addressable id, rewriting empty strings.
func normalize(meta *groupmeta.Metadata) {
	for i := range meta.Participants {
		p := &meta.Participants[i]
		if p.ID == "" {
			p.ID = p.JID
		}
		if p.JID == "" {
			p.JID = p.ID
		}
	}
}
