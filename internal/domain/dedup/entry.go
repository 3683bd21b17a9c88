// Package dedup defines the cross-session deduplication ledger's data
// shape and contract: at-most-one-winner semantics for a given
// (chatId, messageId, action) observed redundantly by several sessions in
// the same fleet.
package dedup

import (
	"context"
	"time"
)

// Key identifies one inbound message a dedup decision is scoped to.
type Key struct {
	ChatID    string
	MessageID string
}

// Action names the unit of work being deduplicated: an anti-plugin scan
// ("anti-<plugin>"), a database mutation ("db-update"), or a permission
// deny reply ("deny-<category>").
type Action string

// Entry is the per-(chatId,messageId) ledger row. One Entry accumulates
// every Action observed for that message.
type Entry struct {
	Key         Key
	Actions     map[Action]actionState
	LockedBy    string
	LockedAt    time.Time
	CreatedAt   time.Time
}

type actionState struct {
	lockedBy    string
	lockedAt    time.Time
	completedAt time.Time
	done        bool
}

// Ledger is the cross-session dedup contract. Implementations must satisfy:
// for any (chatId, messageId, action), at most one session observes
// tryLock->true within the 15s lock window, and markDone is idempotent.
type Ledger interface {
	// TryLock returns true iff sessionID may proceed with action for key:
	// the action isn't already done, and no other session holds a fresh
	// (<15s old) lock on it.
	TryLock(ctx context.Context, key Key, sessionID string, action Action) (bool, error)

	// MarkDone idempotently marks action complete for key.
	MarkDone(ctx context.Context, key Key, sessionID string, action Action) error

	// IsDone reports whether action has been marked complete for key.
	IsDone(ctx context.Context, key Key, action Action) (bool, error)

	// Close stops the ledger's background sweep.
	Close() error
}

const (
	// EntryTTL is how long a dedup entry survives after creation.
	EntryTTL = 30 * time.Second
	// LockAgeOut is how long a lock is honored before it may be taken over.
	LockAgeOut = 15 * time.Second
	// SweepInterval is how often expired entries are purged.
	SweepInterval = 10 * time.Second
	// MaxEntries is the hard cap on ledger size; oldest-by-timestamp is
	// evicted first once exceeded.
	MaxEntries = 300
)
