package whatsapp

import (
	"context"
	"errors"
	"time"

	"wazmeow/internal/domain/session"
)

// WhatsApp domain errors.
var (
	ErrClientNotFound  = errors.New("whatsapp: client not found")
	ErrNoValidAuth     = errors.New("whatsapp: no valid auth, fails open")
	ErrPairingTimeout  = errors.New("whatsapp: pairing code request timed out")
	ErrSocketClosed    = errors.New("whatsapp: socket closed")
	ErrManagerNotRunning = errors.New("whatsapp: manager not running")
)

// Callbacks are the SessionManager-supplied hooks a ConnectionManager wires
// into a freshly built Socket before returning it.
type Callbacks struct {
	OnConnectionUpdate func(sessionID session.SessionID, update ConnectionUpdate)
	OnMessagesUpsert   func(sessionID session.SessionID, upsert MessagesUpsert)
}

// ConnectionManager builds and tears down the per-session Socket, and owns
// the disconnect classification / backoff / pairing-code flow.
type ConnectionManager interface {
	// CreateConnection builds a Socket bound to a fresh AuthHandle for
	// sessionID. phoneNumber is empty unless a pairing-code flow is wanted.
	CreateConnection(ctx context.Context, sessionID session.SessionID, phoneNumber string, callbacks Callbacks, allowPairing bool) (Socket, error)

	// ClassifyDisconnect maps a disconnect status code/reason to a
	// DisconnectDecision.
	ClassifyDisconnect(statusCode int, reason string) DisconnectDecision
}

// DisconnectDecision is ConnectionManager's verdict on one disconnect event.
type DisconnectDecision int

const (
	// DecisionReconnect schedules a backoff-and-retry.
	DecisionReconnect DisconnectDecision = iota
	// DecisionPermanentPurge is a logout/session-replaced: purge web-source
	// sessions entirely, keep telegram-source sessions re-pairable.
	DecisionPermanentPurge
	// DecisionPermanentKeep is a logged, non-retryable 4xx: mark
	// disconnected but keep the session row.
	DecisionPermanentKeep
)

// Stats is the SessionManager-wide snapshot returned by GetStats.
type Stats struct {
	TotalSessions     int
	ConnectedSessions int
	ConnectingSessions int
	ErroredSessions   int
}

// SessionManager is the fleet-wide registry and lifecycle owner described
// of all live sessions. It stores sockets keyed by sessionId and never a reverse
// pointer — Socket itself only ever carries its own sessionId.
type SessionManager interface {
	// CreateSession builds (or rebuilds, when isReconnect) a session's
	// Socket via the bound ConnectionManager and registers it.
	CreateSession(ctx context.Context, userID, phone string, callbacks Callbacks, isReconnect bool, source session.Source, allowPairing bool) (Socket, error)

	// GetSession returns the registered Socket for sessionID, if any.
	GetSession(sessionID session.SessionID) (Socket, bool)

	// DisconnectSession tears a session's Socket down. forceCleanup also
	// purges AuthStore and Session-store state regardless of source.
	DisconnectSession(ctx context.Context, sessionID session.SessionID, forceCleanup bool) error

	// PerformCompleteUserCleanup tears the socket down, cleans the
	// AuthStore, and purges the Session row for web sources.
	PerformCompleteUserCleanup(ctx context.Context, sessionID session.SessionID) error

	// IsReallyConnected reports the live (not just persisted) connection
	// state for sessionID.
	IsReallyConnected(sessionID session.SessionID) bool

	// GetStats returns a fleet-wide snapshot.
	GetStats() Stats

	// Shutdown closes all sockets in parallel, awaiting every cleanup and
	// stopping every background timer/cron job.
	Shutdown(ctx context.Context) error
}

// SessionState is the SessionManager's in-memory mirror of a registered
// session's transient fields, kept alongside the Socket itself.
type SessionState struct {
	ConnectionStatus        ConnectionStatus
	LastMessageAt           time.Time
	VoluntarilyDisconnected bool
	Initializing            bool
	ReconnectAttempts       int
}
