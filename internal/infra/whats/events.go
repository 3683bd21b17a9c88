package whats

import (
	"sync"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wazmeow/internal/domain/whatsapp"
)

// eventBus is the concrete whatsapp.EventBus every driver exposes via
// Events(). Safe for concurrent On/Emit.
type eventBus struct {
	mu       sync.RWMutex
	handlers map[whatsapp.EventType][]whatsapp.Handler
	nextID   int
}

func newEventBus() *eventBus {
	return &eventBus{handlers: make(map[whatsapp.EventType][]whatsapp.Handler)}
}

func (b *eventBus) On(eventType whatsapp.EventType, handler whatsapp.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	idx := len(b.handlers[eventType]) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.handlers[eventType]) {
			b.handlers[eventType][idx] = nil
		}
	}
}

func (b *eventBus) Emit(eventType whatsapp.EventType, payload interface{}) {
	b.mu.RLock()
	handlers := append([]whatsapp.Handler(nil), b.handlers[eventType]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if h != nil {
			h(payload)
		}
	}
}

// handleEvent is whatsmeow's single AddEventHandler callback; it
// translates whatsmeow's concrete event types onto the transport-agnostic
// event stream the domain layer consumes.
func (d *driver) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		jid, _ := d.User()
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status: whatsapp.StatusConnected,
			JID:    jid,
		})

	case *events.Disconnected:
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status: whatsapp.StatusDisconnected,
			Reason: "connection lost",
		})

	case *events.LoggedOut:
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status:     whatsapp.StatusDisconnected,
			StatusCode: loggedOutStatusCode,
			Reason:     "logged out: " + v.Reason.String(),
		})

	case *events.QR:
		// whatsmeow dispatches the current login QR codes as events.QR;
		// the first one goes out as an authenticating update so the
		// SessionManager can persist it on the session row.
		if len(v.Codes) > 0 {
			d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
				Status: whatsapp.StatusAuthenticating,
				QRCode: v.Codes[0],
			})
		}

	case *events.PairSuccess:
		d.bus.Emit(whatsapp.EventCredsUpdate, nil)
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status: whatsapp.StatusAuthenticated,
			JID:    v.ID.String(),
		})

	case *events.StreamError:
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status: whatsapp.StatusError,
			Reason: "stream error: " + v.Code,
		})

	case *events.ConnectFailure:
		d.bus.Emit(whatsapp.EventConnectionUpdate, whatsapp.ConnectionUpdate{
			Status:     whatsapp.StatusError,
			StatusCode: connectFailureStatusCode,
			Reason:     "connect failure: " + v.Reason.String(),
		})

	case *events.Message:
		d.bus.Emit(whatsapp.EventMessagesUpsert, whatsapp.MessagesUpsert{
			Messages: []*whatsapp.Message{toDomainMessage(v)},
		})

	case *events.GroupInfo:
		d.handleGroupInfo(v)

	case *events.Contact:
		d.bus.Emit(whatsapp.EventContactsUpdate, nil)

	case *events.CallOffer:
		d.bus.Emit(whatsapp.EventCall, nil)
	}
}

// loggedOutStatusCode/connectFailureStatusCode are internal stand-ins for
// the numeric status codes ConnectionManager's disconnect-classification
// table switches on; whatsmeow surfaces these as typed reasons rather than
// raw codes, so the adapter assigns stable sentinel values instead.
const (
	loggedOutStatusCode      = 401
	connectFailureStatusCode = 409
)

func toDomainMessage(v *events.Message) *whatsapp.Message {
	return &whatsapp.Message{
		ID:        v.Info.ID,
		ChatID:    v.Info.Chat.String(),
		From:      v.Info.Sender.String(),
		Body:      v.Message.GetConversation(),
		IsGroup:   v.Info.IsGroup,
		IsFromMe:  v.Info.IsFromMe,
		Timestamp: v.Info.Timestamp,
		Raw:       v,
	}
}

// handleGroupInfo bridges whatsmeow's single GroupInfo change-notification
// event onto two separate event streams: a participant-list
// change forces a GroupCache refresh, anything else (settings, name) is an
// evict-or-merge per groupcache's policy. whatsmeow reports the change
// lists as []types.JID and the optional settings as typed pointers; this
// adapter copies only the announce and locked flags and the new name.
func (d *driver) handleGroupInfo(v *events.GroupInfo) {
	groupJID := v.JID.String()

	switch {
	case len(v.Join) > 0:
		d.emitParticipants(groupJID, whatsapp.ParticipantAdd, v.Join)
	case len(v.Leave) > 0:
		d.emitParticipants(groupJID, whatsapp.ParticipantRemove, v.Leave)
	case len(v.Promote) > 0:
		d.emitParticipants(groupJID, whatsapp.ParticipantPromote, v.Promote)
	case len(v.Demote) > 0:
		d.emitParticipants(groupJID, whatsapp.ParticipantDemote, v.Demote)
	default:
		update := whatsapp.GroupUpdate{GroupJID: groupJID}
		if v.Announce != nil {
			announce := v.Announce.IsAnnounce
			update.Announce = &announce
		}
		if v.Locked != nil {
			locked := v.Locked.IsLocked
			update.Restrict = &locked
		}
		if v.Name != nil {
			name := v.Name.Name
			update.Subject = &name
		}
		d.bus.Emit(whatsapp.EventGroupsUpdate, update)
	}
}

func (d *driver) emitParticipants(groupJID string, action whatsapp.GroupParticipantAction, jids []types.JID) {
	participants := make([]string, len(jids))
	for i, j := range jids {
		participants[i] = j.String()
	}
	d.bus.Emit(whatsapp.EventGroupParticipantsUpdate, whatsapp.GroupParticipantsUpdate{
		GroupJID: groupJID, Action: action, Participants: participants,
	})
}
