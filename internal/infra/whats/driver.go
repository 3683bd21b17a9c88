// Package whats is the single adapter package allowed to import
// go.mau.fi/whatsmeow. Everything outside this package talks to
// whatsapp.SocketDriver/Socket only.
package whats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/appstate"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// driver is the whatsmeow-backed whatsapp.SocketDriver. whatsmeow owns its
// own signal-protocol crypto state in the sqlstore.Container passed at
// construction (that part of the store can't be swapped for the
// file/Valkey AuthStore — see DESIGN.md); this adapter is the one place
// the pluggable-AuthStore model and whatsmeow's concrete storage meet.
type driver struct {
	sessionID session.SessionID
	log       logger.Logger

	container *sqlstore.Container
	device    *store.Device
	client    *whatsmeow.Client

	bus *eventBus

	getMessage atomic.Value // whatsapp.GetMessageFunc

	mu     sync.Mutex
	closed bool
}

// Options configures a new driver.
type Options struct {
	SessionID session.SessionID
	Container *sqlstore.Container
	SavedJID  string
	ProxyURL  string
	Log       logger.Logger
}

// New builds a driver bound to a (possibly freshly created) whatsmeow
// device, wires up the event bus, and returns it unconnected.
func New(opts Options) (whatsapp.SocketDriver, error) {
	ctx := context.Background()

	device, err := deviceFor(ctx, opts.Container, opts.SavedJID)
	if err != nil {
		return nil, fmt.Errorf("whats: resolve device: %w", err)
	}

	waClient := whatsmeow.NewClient(device, nil)

	if opts.ProxyURL != "" {
		parsed, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("whats: invalid proxy url: %w", err)
		}
		waClient.SetProxy(http.ProxyURL(parsed))
	}

	d := &driver{
		sessionID: opts.SessionID,
		log:       opts.Log,
		container: opts.Container,
		device:    device,
		client:    waClient,
		bus:       newEventBus(),
	}
	waClient.AddEventHandler(d.handleEvent)
	return d, nil
}

func deviceFor(ctx context.Context, container *sqlstore.Container, savedJID string) (*store.Device, error) {
	if savedJID == "" {
		return container.NewDevice(), nil
	}
	jid, err := types.ParseJID(savedJID)
	if err != nil {
		return container.NewDevice(), nil
	}
	device, err := container.GetDevice(ctx, jid)
	if err != nil || device == nil {
		return container.NewDevice(), nil
	}
	return device, nil
}

func (d *driver) User() (string, bool) {
	if d.client.Store.ID == nil {
		return "", false
	}
	return d.client.Store.ID.String(), true
}

func (d *driver) Connect(ctx context.Context) error {
	return d.client.Connect()
}

func (d *driver) Disconnect(ctx context.Context) error {
	d.client.Disconnect()
	return nil
}

func (d *driver) IsConnected() bool {
	return d.client.IsConnected()
}

func (d *driver) IsLoggedIn() bool {
	return d.client.Store.ID != nil
}

func (d *driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.client.Disconnect()
	return nil
}

func (d *driver) Events() whatsapp.EventBus {
	return d.bus
}

func (d *driver) SetGetMessageHook(fn whatsapp.GetMessageFunc) {
	d.getMessage.Store(fn)
}

func (d *driver) lookupMessage(chatID, messageID string) (*whatsapp.Message, bool) {
	fn, ok := d.getMessage.Load().(whatsapp.GetMessageFunc)
	if !ok || fn == nil {
		return nil, false
	}
	return fn(chatID, messageID)
}

// RequestPairingCode requests a pairing code for phoneNumber. Callers
// (ConnectionManager) must have already waited for the transport to reach
// Connecting/Open.
func (d *driver) RequestPairingCode(ctx context.Context, phoneNumber string) (string, error) {
	if d.client.Store.ID != nil {
		return "", whatsapp.ErrNoValidAuth
	}
	code, err := d.client.PairPhone(ctx, phoneNumber, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return "", fmt.Errorf("whats: request pairing code: %w", err)
	}
	return code, nil
}

// SendMessage sends raw content via the transport. The richer retry/
// rate-bucket/timeout behavior lives one layer up in the Socket wrapper.
// content.Extra["media_type"] switches to the upload path for
// image/video/audio/document sends.
func (d *driver) SendMessage(ctx context.Context, jid string, content whatsapp.MessageContent, opts whatsapp.SendOptions) (whatsapp.SendResult, error) {
	recipient, err := types.ParseJID(jid)
	if err != nil {
		return whatsapp.SendResult{}, fmt.Errorf("%w: %s", ErrInvalidJID, jid)
	}

	msg, err := d.buildMessage(ctx, content)
	if err != nil {
		return whatsapp.SendResult{}, err
	}

	resp, err := d.client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return whatsapp.SendResult{}, classifySendError(err)
	}
	return whatsapp.SendResult{MessageID: resp.ID, Timestamp: resp.Timestamp}, nil
}

// buildMessage turns a MessageContent into a waE2E.Message, uploading
// media to WhatsApp's blob store first when content.Extra carries a
// media_type.
func (d *driver) buildMessage(ctx context.Context, content whatsapp.MessageContent) (*waE2E.Message, error) {
	mediaType, _ := content.Extra["media_type"].(string)
	if mediaType == "" {
		if len(content.Mentions) > 0 {
			return &waE2E.Message{
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{
					Text: &content.Text,
					ContextInfo: &waE2E.ContextInfo{
						MentionedJID: content.Mentions,
					},
				},
			}, nil
		}
		return &waE2E.Message{Conversation: &content.Text}, nil
	}

	data, _ := content.Extra["data"].([]byte)
	mimeType, _ := content.Extra["mime_type"].(string)

	var appInfo whatsmeow.MediaType
	switch mediaType {
	case "image":
		appInfo = whatsmeow.MediaImage
	case "video":
		appInfo = whatsmeow.MediaVideo
	case "audio":
		appInfo = whatsmeow.MediaAudio
	case "document":
		appInfo = whatsmeow.MediaDocument
	default:
		return nil, fmt.Errorf("whats: unsupported media type %q", mediaType)
	}

	uploaded, err := d.client.Upload(ctx, data, appInfo)
	if err != nil {
		return nil, fmt.Errorf("whats: upload %s: %w", mediaType, err)
	}

	switch mediaType {
	case "image":
		return &waE2E.Message{
			ImageMessage: &waE2E.ImageMessage{
				Caption:       proto.String(content.Text),
				Mimetype:      proto.String(mimeType),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uploaded.FileLength),
			},
		}, nil
	case "video":
		return &waE2E.Message{
			VideoMessage: &waE2E.VideoMessage{
				Caption:       proto.String(content.Text),
				Mimetype:      proto.String(mimeType),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uploaded.FileLength),
			},
		}, nil
	case "audio":
		isPTT, _ := content.Extra["is_ptt"].(bool)
		return &waE2E.Message{
			AudioMessage: &waE2E.AudioMessage{
				PTT:           proto.Bool(isPTT),
				Mimetype:      proto.String(mimeType),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uploaded.FileLength),
			},
		}, nil
	case "document":
		filename, _ := content.Extra["filename"].(string)
		return &waE2E.Message{
			DocumentMessage: &waE2E.DocumentMessage{
				FileName:      proto.String(filename),
				Mimetype:      proto.String(mimeType),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uploaded.FileLength),
			},
		}, nil
	default:
		return nil, fmt.Errorf("whats: unsupported media type %q", mediaType)
	}
}

func (d *driver) GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error) {
	jid, err := types.ParseJID(groupJID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJID, groupJID)
	}
	info, err := d.client.GetGroupInfo(jid)
	if err != nil {
		return nil, classifyGroupError(err)
	}

	participants := make([]groupmeta.Participant, 0, len(info.Participants))
	for _, p := range info.Participants {
		role := groupmeta.RoleNone
		if p.IsSuperAdmin {
			role = groupmeta.RoleSuperAdmin
		} else if p.IsAdmin {
			role = groupmeta.RoleAdmin
		}
		participants = append(participants, groupmeta.Participant{
			ID:    p.JID.String(),
			JID:   p.JID.String(),
			Admin: role,
		})
	}

	return &groupmeta.Metadata{
		ID:           groupJID,
		Subject:      info.Name,
		Participants: participants,
		Announce:     info.IsAnnounce,
		Restrict:     info.IsLocked,
		FetchedAt:    time.Now(),
	}, nil
}

func (d *driver) OnWhatsApp(ctx context.Context, phones []string) ([]whatsapp.RegistrationStatus, error) {
	results, err := d.client.IsOnWhatsApp(phones)
	if err != nil {
		return nil, fmt.Errorf("whats: on-whatsapp check: %w", err)
	}
	out := make([]whatsapp.RegistrationStatus, 0, len(results))
	for _, r := range results {
		out = append(out, whatsapp.RegistrationStatus{
			Phone:  r.Query,
			JID:    r.JID.String(),
			Exists: r.IsIn,
		})
	}
	return out, nil
}

func (d *driver) NewsletterFollow(ctx context.Context, newsletterJID string) error {
	jid, err := types.ParseJID(newsletterJID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJID, newsletterJID)
	}
	return d.client.FollowNewsletter(jid)
}

func (d *driver) SubscribeNewsletterUpdates(ctx context.Context, newsletterJID string) error {
	jid, err := types.ParseJID(newsletterJID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJID, newsletterJID)
	}
	_, err = d.client.NewsletterSubscribeLiveUpdates(ctx, jid)
	return err
}

func (d *driver) NewsletterUnmute(ctx context.Context, newsletterJID string) error {
	jid, err := types.ParseJID(newsletterJID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJID, newsletterJID)
	}
	return d.client.NewsletterToggleMute(jid, false)
}

func (d *driver) NewsletterMetadata(ctx context.Context, newsletterJID string) (*whatsapp.NewsletterMetadata, error) {
	jid, err := types.ParseJID(newsletterJID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJID, newsletterJID)
	}
	info, err := d.client.GetNewsletterInfo(jid)
	if err != nil {
		return nil, fmt.Errorf("whats: newsletter metadata: %w", err)
	}
	return &whatsapp.NewsletterMetadata{JID: jid.String(), Name: info.ThreadMeta.Name.Text}, nil
}

func (d *driver) ChatModify(ctx context.Context, jid string, mod whatsapp.ChatModification) error {
	recipient, err := types.ParseJID(jid)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJID, jid)
	}
	if mod.Pin != nil {
		patch := appstate.BuildPin(recipient, *mod.Pin)
		return d.client.SendAppState(ctx, patch)
	}
	return nil
}

func (d *driver) ResolveLID(ctx context.Context, lid string) (string, error) {
	jid, err := types.ParseJID(lid)
	if err != nil {
		return lid, nil
	}
	pn, err := d.client.Store.LIDs.GetPNForLID(ctx, jid)
	if err != nil || pn.IsEmpty() {
		return lid, nil
	}
	return pn.String(), nil
}
