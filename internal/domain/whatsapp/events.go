package whatsapp

import "time"

// EventType enumerates the SocketDriver event stream names.
type EventType string

const (
	EventConnectionUpdate        EventType = "connection.update"
	EventCredsUpdate             EventType = "creds.update"
	EventMessagesUpsert          EventType = "messages.upsert"
	EventMessagesUpdate          EventType = "messages.update"
	EventGroupsUpdate            EventType = "groups.update"
	EventGroupParticipantsUpdate EventType = "group-participants.update"
	EventContactsUpdate          EventType = "contacts.update"
	EventCall                    EventType = "call"
	EventLIDMappingUpdate        EventType = "lid-mapping.update"
)

// ConnectionUpdate is the payload of an EventConnectionUpdate event.
type ConnectionUpdate struct {
	Status     ConnectionStatus
	StatusCode int
	Reason     string
	JID        string

	// QRCode carries the current login QR payload when Status is
	// StatusAuthenticating and the driver is in QR-scan mode (no
	// phoneNumber was supplied for pairing-code auth).
	QRCode string
}

// GroupUpdate is the payload of an EventGroupsUpdate event: a setting
// change (announce/restrict) or a generic metadata patch to merge.
type GroupUpdate struct {
	GroupJID string
	Announce *bool
	Restrict *bool
	Subject  *string
}

// GroupParticipantAction enumerates group-participants.update actions.
type GroupParticipantAction string

const (
	ParticipantAdd     GroupParticipantAction = "add"
	ParticipantRemove  GroupParticipantAction = "remove"
	ParticipantPromote GroupParticipantAction = "promote"
	ParticipantDemote  GroupParticipantAction = "demote"
)

// GroupParticipantsUpdate is the payload of an
// EventGroupParticipantsUpdate event.
type GroupParticipantsUpdate struct {
	GroupJID     string
	Action       GroupParticipantAction
	Participants []string
}

// MessagesUpsert is the payload of an EventMessagesUpsert event.
type MessagesUpsert struct {
	Messages []*Message
}

// Handler is a typed callback registered against one EventType.
type Handler func(payload interface{})

// EventBus is the per-driver event emitter. Within one
// session, delivery is sequential — the driver emits one event at a time —
// but the bus itself must be safe for concurrent Subscribe/Emit from the
// ConnectionManager's setup goroutines.
type EventBus interface {
	On(eventType EventType, handler Handler) (unsubscribe func())
	Emit(eventType EventType, payload interface{})
}

// Timestamped is a convenience embed for event payloads that carry a wall
// clock time (QR expiry, reconnect scheduling, etc).
type Timestamped struct {
	At time.Time
}
