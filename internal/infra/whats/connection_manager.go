package whats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mau.fi/whatsmeow/store/sqlstore"

	"wazmeow/internal/domain/auth"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/infra/authstore"
	"wazmeow/internal/infra/groupcache"
	"wazmeow/internal/infra/messagestore"
	"wazmeow/internal/infra/ratebucket"
	"wazmeow/pkg/logger"
)

const (
	pairingPollInterval = 100 * time.Millisecond
	pairingPollTimeout  = 30 * time.Second
	pairingGracePeriod  = 5 * time.Minute
	initialSyncSettle   = 1 * time.Second
)

// ConnectionManager builds and tears down Sockets: sqlstore.Container-
// backed device lifecycle and proxy wiring, structured around
// whatsapp.SocketDriver/Socket so the core never sees
// whatsmeow types.
type ConnectionManager struct {
	container  *sqlstore.Container
	authStore  *authstore.Store
	bucket     *ratebucket.Bucket
	groupCache *groupcache.Cache
	sessions   session.Repository
	log        logger.Logger

	mu              sync.Mutex
	pairingInFlight map[session.SessionID]time.Time
}

// NewConnectionManager builds a ConnectionManager. bucket is the
// process-wide outbound rate gate and groupCache the fleet-shared group
// metadata cache; every socket this manager builds funnels through both.
func NewConnectionManager(container *sqlstore.Container, authStore *authstore.Store, bucket *ratebucket.Bucket, groupCache *groupcache.Cache, sessions session.Repository, log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		container:       container,
		authStore:       authStore,
		bucket:          bucket,
		groupCache:      groupCache,
		sessions:        sessions,
		log:             log,
		pairingInFlight: make(map[session.SessionID]time.Time),
	}
}

// CreateConnection implements whatsapp.ConnectionManager.
func (m *ConnectionManager) CreateConnection(ctx context.Context, sessionID session.SessionID, phoneNumber string, callbacks whatsapp.Callbacks, allowPairing bool) (whatsapp.Socket, error) {
	handle, err := m.authStore.Open(ctx, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("whats: open auth handle: %w", err)
	}

	sess, err := m.sessions.GetByID(ctx, sessionID)
	savedJID, proxyURL := "", ""
	if err == nil && sess != nil {
		savedJID = sess.WaJID()
		proxyURL = sess.ProxyURL()
	}

	drv, err := New(Options{
		SessionID: sessionID,
		Container: m.container,
		SavedJID:  savedJID,
		ProxyURL:  proxyURL,
		Log:       m.log,
	})
	if err != nil {
		return nil, err
	}

	sock := newSocket(drv, sessionID, m.bucket)

	store := messagestore.New()
	unbindMessages := store.Bind(drv)
	_ = unbindMessages // never called: the store stays bound for the driver's lifetime

	if m.groupCache != nil {
		drv.Events().On(whatsapp.EventGroupsUpdate, func(payload interface{}) {
			if update, ok := payload.(whatsapp.GroupUpdate); ok {
				m.groupCache.OnGroupsUpdate(update)
			}
		})
		drv.Events().On(whatsapp.EventGroupParticipantsUpdate, func(payload interface{}) {
			if update, ok := payload.(whatsapp.GroupParticipantsUpdate); ok {
				m.groupCache.OnGroupParticipantsUpdate(update)
			}
		})
	}

	unsubCreds := drv.Events().On(whatsapp.EventCredsUpdate, func(payload interface{}) {
		creds, err := handle.Creds(ctx)
		if err != nil {
			return
		}
		_ = handle.SaveCreds(ctx, creds)
	})
	_ = unsubCreds

	if callbacks.OnConnectionUpdate != nil {
		drv.Events().On(whatsapp.EventConnectionUpdate, func(payload interface{}) {
			if update, ok := payload.(whatsapp.ConnectionUpdate); ok {
				callbacks.OnConnectionUpdate(sessionID, update)
			}
		})
	}
	if callbacks.OnMessagesUpsert != nil {
		drv.Events().On(whatsapp.EventMessagesUpsert, func(payload interface{}) {
			if upsert, ok := payload.(whatsapp.MessagesUpsert); ok {
				callbacks.OnMessagesUpsert(sessionID, upsert)
			}
		})
	}

	time.Sleep(initialSyncSettle)

	if allowPairing && phoneNumber != "" && !drv.IsLoggedIn() {
		handle.MarkPairingInProgress(true)
		m.markPairing(sessionID)
		go m.runPairing(sessionID, sock, phoneNumber, handle)
	}

	if err := drv.Connect(ctx); err != nil {
		return nil, fmt.Errorf("whats: connect: %w", err)
	}

	return sock, nil
}

// runPairing waits for the transport to reach Connecting/Open (poll every
// 100ms, <=30s) then requests a pairing code, clearing the
// pairing-in-progress flag after a grace period regardless of outcome.
func (m *ConnectionManager) runPairing(sessionID session.SessionID, sock whatsapp.Socket, phoneNumber string, handle auth.Handle) {
	defer func() {
		time.AfterFunc(pairingGracePeriod, func() {
			handle.MarkPairingInProgress(false)
			m.clearPairing(sessionID)
		})
	}()

	deadline := time.Now().Add(pairingPollTimeout)
	for time.Now().Before(deadline) {
		if sock.IsConnected() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_, _ = sock.RequestPairingCode(ctx, phoneNumber)
			cancel()
			return
		}
		time.Sleep(pairingPollInterval)
	}
}

func (m *ConnectionManager) markPairing(sessionID session.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairingInFlight[sessionID] = time.Now()
}

func (m *ConnectionManager) clearPairing(sessionID session.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pairingInFlight, sessionID)
}

// ClassifyDisconnect maps a disconnect status code/reason to a
// whatsapp.DisconnectDecision.
func (m *ConnectionManager) ClassifyDisconnect(statusCode int, reason string) whatsapp.DisconnectDecision {
	lowerReason := strings.ToLower(reason)

	switch {
	case statusCode == loggedOutStatusCode || strings.Contains(lowerReason, "logged out") || strings.Contains(lowerReason, "session replaced"):
		return whatsapp.DecisionPermanentPurge
	case strings.Contains(lowerReason, "conflict") || strings.Contains(lowerReason, "concurrent"):
		return whatsapp.DecisionReconnect
	case strings.Contains(lowerReason, "timeout") || strings.Contains(lowerReason, "connection lost") || statusCode == 0:
		return whatsapp.DecisionReconnect
	case statusCode >= 400 && statusCode < 500:
		return whatsapp.DecisionPermanentKeep
	default:
		return whatsapp.DecisionReconnect
	}
}
