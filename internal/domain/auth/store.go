package auth

import "context"

// Handle is a per-session handle onto the dual-tier AuthStore, bound to one
// sessionId for its whole lifetime.
type Handle interface {
	// Get performs parallel reads of key material for the given kind and
	// ids, returning whatever subset exists.
	Get(ctx context.Context, kind KeyKind, ids []string) (map[string]Record, error)

	// Set performs a batched upsert/delete of key material. A nil Value
	// for a given id means "delete".
	Set(ctx context.Context, updates []Record) error

	// Creds returns the currently loaded creds snapshot.
	Creds(ctx context.Context) (Creds, error)

	// SaveCreds validates and persists creds, honoring the
	// pairing-in-progress exemption.
	SaveCreds(ctx context.Context, creds Creds) error

	// MarkPairingInProgress toggles the exemption used by SaveCreds and by
	// the ConnectionManager's pairing flow.
	MarkPairingInProgress(inProgress bool)

	// Close stops background timers (debounce, health probe) and,
	// if flushFinal is true, performs one last synchronous flush.
	Close(flushFinal bool) error

	// SessionID returns the session this handle is bound to.
	SessionID() string
}

// Store is the dual-tier AuthStore contract: open/hasValid/cleanup at the
// store level, everything else through the returned Handle.
type Store interface {
	// Open loads creds+keys for sessionId, creating a fresh empty creds
	// record if none exists yet.
	Open(ctx context.Context, sessionID string) (Handle, error)

	// HasValid reports whether sessionId has a structurally valid,
	// registered creds record without opening a handle.
	HasValid(ctx context.Context, sessionID string) (bool, error)

	// Cleanup removes all primary- and secondary-tier state for sessionId.
	Cleanup(ctx context.Context, sessionID string) error

	// BackupHealthy reports the current health of the secondary tier, per
	// the 60s probe / 3-consecutive-timeout rule.
	BackupHealthy() bool
}
