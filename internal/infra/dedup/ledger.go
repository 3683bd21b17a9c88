// Package dedup implements the cross-session DedupLedger:
// an in-memory, TTL'd, lock-age-out map enforcing at-most-one-winner
// semantics for a given (chatId, messageId, action).
package dedup

import (
	"container/list"
	"context"
	"sync"
	"time"

	"wazmeow/internal/domain/dedup"
)

// entry is the ledger row for one (chatId, messageId), mirroring the
// domain shape but carrying the doubly-linked-list element used for
// oldest-first eviction over the cap.
type entry struct {
	key       dedup.Key
	actions   map[dedup.Action]*actionState
	createdAt time.Time
	elem      *list.Element
}

type actionState struct {
	lockedBy string
	lockedAt time.Time
	done     bool
}

// Ledger is the in-memory dedup.Ledger implementation: a Lock/Unlock
// TTL-map keyed by the (key, action) pair.
type Ledger struct {
	mu      sync.Mutex
	entries map[dedup.Key]*entry
	order   *list.List

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// New builds a Ledger and starts its background sweep.
func New() *Ledger {
	l := &Ledger{
		entries: make(map[dedup.Key]*entry),
		order:   list.New(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// TryLock returns true iff sessionID may proceed with action for key: the
// action isn't already done, and no other session holds a fresh
// (< 15s old) lock on it. An expired lock may be taken over, with ties
// broken by request arrival order (the caller that observes the lock as
// expired first wins, since the mutex serializes the check-and-set).
func (l *Ledger) TryLock(ctx context.Context, key dedup.Key, sessionID string, action dedup.Action) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.getOrCreateLocked(key)
	st, ok := e.actions[action]
	if !ok {
		e.actions[action] = &actionState{lockedBy: sessionID, lockedAt: time.Now()}
		return true, nil
	}
	if st.done {
		return false, nil
	}
	if st.lockedBy == sessionID {
		st.lockedAt = time.Now()
		return true, nil
	}
	if time.Since(st.lockedAt) < dedup.LockAgeOut {
		return false, nil
	}
	st.lockedBy = sessionID
	st.lockedAt = time.Now()
	return true, nil
}

// MarkDone idempotently marks action complete for key.
func (l *Ledger) MarkDone(ctx context.Context, key dedup.Key, sessionID string, action dedup.Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.getOrCreateLocked(key)
	st, ok := e.actions[action]
	if !ok {
		e.actions[action] = &actionState{lockedBy: sessionID, lockedAt: time.Now(), done: true}
		return nil
	}
	st.done = true
	st.lockedBy = sessionID
	return nil
}

// IsDone reports whether action has been marked complete for key.
func (l *Ledger) IsDone(ctx context.Context, key dedup.Key, action dedup.Action) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	st, ok := e.actions[action]
	return ok && st.done, nil
}

func (l *Ledger) getOrCreateLocked(key dedup.Key) *entry {
	if e, ok := l.entries[key]; ok {
		return e
	}
	e := &entry{key: key, actions: make(map[dedup.Action]*actionState), createdAt: time.Now()}
	e.elem = l.order.PushFront(key)
	l.entries[key] = e
	l.evictOverCapLocked()
	return e
}

func (l *Ledger) evictOverCapLocked() {
	for len(l.entries) > dedup.MaxEntries {
		back := l.order.Back()
		if back == nil {
			return
		}
		l.removeLocked(back.Value.(dedup.Key))
	}
}

func (l *Ledger) removeLocked(key dedup.Key) {
	e, ok := l.entries[key]
	if !ok {
		return
	}
	l.order.Remove(e.elem)
	delete(l.entries, key)
}

func (l *Ledger) sweepLoop() {
	defer close(l.done)
	ticker := time.NewTicker(dedup.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Ledger) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.Sub(e.createdAt) > dedup.EntryTTL {
			l.removeLocked(key)
		}
	}
}

// Close stops the background sweep.
func (l *Ledger) Close() error {
	l.once.Do(func() {
		close(l.stop)
		<-l.done
	})
	return nil
}
