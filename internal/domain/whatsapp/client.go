package whatsapp

import (
	"context"
	"time"

	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
)

// SocketDriver is the opaque contract the core expects from whichever
// WhatsApp transport library backs a session. The core never
// depends on the concrete transport beyond this interface — only the
// infra/whats adapter package imports the transport library directly.
type SocketDriver interface {
	// User returns the post-connect identity, or ok=false before login.
	User() (jid string, ok bool)

	// SendMessage sends content to jid. The core's outbound helper
	// (Socket.SendMessage) wraps this with scheduling/retry/timeout.
	SendMessage(ctx context.Context, jid string, content MessageContent, opts SendOptions) (SendResult, error)

	// GroupMetadata fetches group metadata directly from the transport,
	// bypassing any cache. Returns a classified error (ErrForbidden,
	// ErrRateLimited) on known failure shapes.
	GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error)

	// OnWhatsApp checks registration for a set of phone numbers.
	OnWhatsApp(ctx context.Context, phones []string) ([]RegistrationStatus, error)

	NewsletterFollow(ctx context.Context, newsletterJID string) error
	SubscribeNewsletterUpdates(ctx context.Context, newsletterJID string) error
	NewsletterUnmute(ctx context.Context, newsletterJID string) error
	NewsletterMetadata(ctx context.Context, newsletterJID string) (*NewsletterMetadata, error)

	// ChatModify applies a chat-level mutation (currently just pin).
	ChatModify(ctx context.Context, jid string, mod ChatModification) error

	// ResolveLID maps a LID (linked-device identifier) to a phone-number
	// JID when the transport supports LID/PN mapping; a no-op driver may
	// return the input unchanged.
	ResolveLID(ctx context.Context, lid string) (string, error)

	// SetGetMessageHook installs the decryption-retry callback; the
	// MessageStore binds itself here via ConnectionManager.
	SetGetMessageHook(fn GetMessageFunc)

	// Events returns the driver's event bus (connection.update,
	// creds.update, messages.upsert, messages.update, groups.update,
	// group-participants.update, contacts.update, call, and optionally
	// lid-mapping.update).
	Events() EventBus

	// RequestPairingCode requests a pairing code for phoneNumber. Callers
	// must have already waited for the transport to reach
	// Connecting/Open per the ConnectionManager's pairing steps.
	RequestPairingCode(ctx context.Context, phoneNumber string) (string, error)

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	IsLoggedIn() bool

	// Close tears down the underlying transport and releases resources.
	Close() error
}

// GetMessageFunc is the decryption-retry callback slot a SocketDriver
// calls into; MessageStore.LoadMessage satisfies this signature.
type GetMessageFunc func(chatID, messageID string) (*Message, bool)

// RegistrationStatus is the result of an OnWhatsApp registration check.
type RegistrationStatus struct {
	Phone  string
	JID    string
	Exists bool
}

// ChatModification describes a ChatModify mutation.
type ChatModification struct {
	Pin *bool
}

// NewsletterMetadata is the minimal newsletter info the core cares about.
type NewsletterMetadata struct {
	JID  string
	Name string
}

// MessageContent is the outbound payload passed to SendMessage. Mentions
// triggers the rate-limit-fallback-without-mentions retry path.
type MessageContent struct {
	Text     string
	Mentions []string
	Extra    map[string]interface{}
}

// SendOptions configures one outbound send.
type SendOptions struct {
	EphemeralExpiration time.Duration
	Timestamp           time.Time
}

// SendResult is the outcome of a successful SendMessage call.
type SendResult struct {
	MessageID string
	Timestamp time.Time
}

// ConnectionStatus mirrors the Session entity's status for the socket
// itself (it adds states the driver can be in that the persisted Session
// status doesn't distinguish, e.g. Authenticating).
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

// String returns the string representation of ConnectionStatus.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DeviceInfo describes the paired device, surfaced for diagnostics.
type DeviceInfo struct {
	Platform     string
	AppVersion   string
	DeviceModel  string
	Manufacturer string
}

// Message is the core's transport-agnostic view of an inbound/outbound
// WhatsApp message, used by MessageStore and the Dispatcher.
type Message struct {
	ID        string
	ChatID    string
	From      string
	Body      string
	IsGroup   bool
	IsFromMe  bool
	Timestamp time.Time
	Raw       interface{}
}

// Socket is the SessionManager/ConnectionManager-facing handle for one
// live session: a SocketDriver plus the owning sessionId and the outbound
// helpers layered on top of it. SessionManager stores Sockets
// keyed by sessionId and never a reverse pointer.
type Socket interface {
	SocketDriver

	SessionID() session.SessionID

	// SendText is the retry/backoff/rate-bucket-wrapped outbound helper
	// layered over SocketDriver.SendMessage.
	SendText(ctx context.Context, jid, text string, mentions []string) (SendResult, error)
}
