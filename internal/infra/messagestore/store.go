// Package messagestore implements the per-session MessageStore component
//: a bounded, in-memory, non-authoritative index of recent
// messages used to satisfy a SocketDriver's decryption-retry lookups.
package messagestore

import (
	"container/list"
	"sync"
	"time"

	"wazmeow/internal/domain/whatsapp"
)

const (
	// maxEntries is the implementation-chosen high-water mark: past this
	// many tracked messages the oldest-by-insertion entries are evicted.
	maxEntries = 2000
	// maxAge evicts entries older than this regardless of count.
	maxAge = 2 * time.Hour
)

type record struct {
	msg       *whatsapp.Message
	insertedAt time.Time
	elem      *list.Element
}

// Store is one session's message index. It's deliberately not
// authoritative: a miss just means the caller (the SocketDriver's
// decryption retry path) falls back to a formal retry receipt.
type Store struct {
	mu      sync.Mutex
	entries map[string]*record // key = chatID + "\x00" + messageID
	order   *list.List
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*record),
		order:   list.New(),
	}
}

func key(chatID, messageID string) string {
	return chatID + "\x00" + messageID
}

// Bind subscribes to the driver's messages.upsert event so the store stays
// populated, and installs itself as the getMessage decryption-retry hook.
func (s *Store) Bind(driver whatsapp.SocketDriver) func() {
	unsubscribe := driver.Events().On(whatsapp.EventMessagesUpsert, func(payload interface{}) {
		upsert, ok := payload.(whatsapp.MessagesUpsert)
		if !ok {
			return
		}
		for _, m := range upsert.Messages {
			s.Put(m)
		}
	})
	driver.SetGetMessageHook(s.LoadMessage)
	return unsubscribe
}

// Put inserts or refreshes a message in the index.
func (s *Store) Put(msg *whatsapp.Message) {
	if msg == nil {
		return
	}
	k := key(msg.ChatID, msg.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.entries[k]; ok {
		r.msg = msg
		r.insertedAt = time.Now()
		s.order.MoveToFront(r.elem)
		return
	}

	elem := s.order.PushFront(k)
	s.entries[k] = &record{msg: msg, insertedAt: time.Now(), elem: elem}
	s.evictLocked()
}

// LoadMessage satisfies whatsapp.GetMessageFunc: it returns (nil, false)
// on any miss, including age-expired entries.
func (s *Store) LoadMessage(chatID, messageID string) (*whatsapp.Message, bool) {
	k := key(chatID, messageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	if time.Since(r.insertedAt) > maxAge {
		s.removeLocked(k)
		return nil, false
	}
	return r.msg, true
}

// Len reports the current entry count, mostly useful for tests/metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictLocked() {
	for len(s.entries) > maxEntries {
		back := s.order.Back()
		if back == nil {
			return
		}
		s.removeLocked(back.Value.(string))
	}
}

func (s *Store) removeLocked(k string) {
	r, ok := s.entries[k]
	if !ok {
		return
	}
	s.order.Remove(r.elem)
	delete(s.entries, k)
}
