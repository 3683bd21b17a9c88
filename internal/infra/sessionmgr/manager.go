package sessionmgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"wazmeow/internal/domain/auth"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// ErrAlreadySessionRegistered is returned by CreateSession when a live
// Socket is already registered for the derived sessionId (invariant 1).
var ErrAlreadySessionRegistered = errors.New("sessionmgr: session already registered")

const postOpenSyncWait = 2 * time.Second

// Config configures a Manager.
type Config struct {
	// ControlBotJID receives a one-shot notification whenever a
	// telegram-source session opens.
	ControlBotJID string
	// ChannelJID, if set, is enqueued to the channel-join batcher on every
	// session open.
	ChannelJID string
	// Enable515Flow tears the socket fully out of the registry on a 515
	// stream-restart disconnect so the next reconnect rebuilds it from
	// scratch instead of reusing the live socket. Opt-in; the server-side
	// behavior behind code 515 is not well documented.
	Enable515Flow bool
}

// streamRestart515 is the disconnect status code some servers emit right
// after pairing, expecting the client to restart its stream.
const streamRestart515 = 515

// Manager is the whatsapp.SessionManager implementation: registry +
// on-open/on-close sequencing + health monitor + channel-join batcher +
// shutdown, structured around the whatsapp.Socket/ConnectionManager
// contracts.
type Manager struct {
	cfg       Config
	connMgr   whatsapp.ConnectionManager
	sessions  session.Repository
	authStore auth.Store
	log       logger.Logger

	registry *registry
	batcher  *joinBatcher
	health   *healthMonitor
	cron     *cron.Cron

	joinCtx    context.Context
	cancelJoin context.CancelFunc

	mu           sync.Mutex
	shuttingDown bool
	inbound      InboundHandler

	dispatcherInstalled map[session.SessionID]bool
}

// InboundHandler receives every inbound message batch after the registry's
// activity bookkeeping. The container installs the Dispatcher here once at
// startup.
type InboundHandler func(sessionID session.SessionID, upsert whatsapp.MessagesUpsert)

// SetInboundHandler installs the fleet-wide inbound message sink.
func (m *Manager) SetInboundHandler(h InboundHandler) {
	m.mu.Lock()
	m.inbound = h
	m.mu.Unlock()
}

// New builds a Manager and starts its background cron jobs and channel-join
// drain loop. Call Shutdown to stop them.
func New(connMgr whatsapp.ConnectionManager, sessions session.Repository, authStore auth.Store, cfg Config, log logger.Logger) *Manager {
	reg := newRegistry()

	m := &Manager{
		cfg:                 cfg,
		connMgr:             connMgr,
		sessions:            sessions,
		authStore:           authStore,
		log:                 log,
		registry:            reg,
		dispatcherInstalled: make(map[session.SessionID]bool),
	}

	m.batcher = newJoinBatcher(m.registry.get, log)
	m.health = newHealthMonitor(reg, HealthHooks{
		ProbeLiveness: m.probeLiveness,
		DropAuxState:  m.dropAuxState,
	}, log)

	m.cron = cron.New()
	_, _ = m.cron.AddFunc(healthSweepCron, m.health.sweep)
	m.cron.Start()

	m.joinCtx, m.cancelJoin = context.WithCancel(context.Background())
	go m.batcher.Run(m.joinCtx)

	return m
}

// CreateSession implements whatsapp.SessionManager.
func (m *Manager) CreateSession(ctx context.Context, userID, phone string, callbacks whatsapp.Callbacks, isReconnect bool, source session.Source, allowPairing bool) (whatsapp.Socket, error) {
	id := session.NewSessionID(userID)

	if _, ok := m.registry.get(id); ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySessionRegistered, id.String())
	}

	wrapped := whatsapp.Callbacks{
		OnConnectionUpdate: func(sessionID session.SessionID, update whatsapp.ConnectionUpdate) {
			m.onConnectionUpdate(sessionID, update, source)
			if callbacks.OnConnectionUpdate != nil {
				callbacks.OnConnectionUpdate(sessionID, update)
			}
		},
		OnMessagesUpsert: func(sessionID session.SessionID, upsert whatsapp.MessagesUpsert) {
			m.registry.mutateState(sessionID, func(s *whatsapp.SessionState) { s.LastMessageAt = time.Now() })
			m.mu.Lock()
			inbound := m.inbound
			m.mu.Unlock()
			if inbound != nil {
				inbound(sessionID, upsert)
			}
			if callbacks.OnMessagesUpsert != nil {
				callbacks.OnMessagesUpsert(sessionID, upsert)
			}
		},
	}

	sock, err := m.connMgr.CreateConnection(ctx, id, phone, wrapped, allowPairing)
	if err != nil {
		return nil, err
	}
	m.registry.put(id, sock)

	if err := m.persistSessionOnCreate(ctx, id, userID, phone, source, isReconnect); err != nil {
		m.log.Warn("sessionmgr: failed to persist session row on create")
	}

	return sock, nil
}

func (m *Manager) persistSessionOnCreate(ctx context.Context, id session.SessionID, userID, phone string, source session.Source, isReconnect bool) error {
	existing, err := m.sessions.GetByID(ctx, id)
	if err == nil && existing != nil {
		existing.SetConnecting()
		if phone != "" {
			existing.SetPhoneNumber(phone)
		}
		if isReconnect {
			existing.IncrementReconnectAttempts()
		}
		return m.sessions.Update(ctx, existing)
	}

	sess := session.NewSession(userID, phone, source)
	sess.SetConnecting()
	return m.sessions.Create(ctx, sess)
}

// onConnectionUpdate drives the on-open/on-close sequencing.
func (m *Manager) onConnectionUpdate(id session.SessionID, update whatsapp.ConnectionUpdate, source session.Source) {
	switch update.Status {
	case whatsapp.StatusConnected, whatsapp.StatusAuthenticated:
		m.onOpen(id, update, source)
	case whatsapp.StatusDisconnected, whatsapp.StatusError:
		m.onClose(id, update, source)
	case whatsapp.StatusAuthenticating:
		m.onAuthenticating(id, update)
	}
}

// onAuthenticating persists a freshly issued login QR code so it can be
// served back out through the session row rather than a direct return
// value, since the QR itself only ever arrives asynchronously off the
// driver's event bus.
func (m *Manager) onAuthenticating(id session.SessionID, update whatsapp.ConnectionUpdate) {
	if update.QRCode == "" {
		return
	}
	ctx := context.Background()
	sess, err := m.sessions.GetByID(ctx, id)
	if err != nil || sess == nil {
		return
	}
	sess.SetQRCode(update.QRCode)
	_ = m.sessions.Update(ctx, sess)
}

func (m *Manager) onOpen(id session.SessionID, update whatsapp.ConnectionUpdate, source session.Source) {
	// 1-2: clear reconnect/voluntary flags, record activity.
	m.registry.mutateState(id, func(s *whatsapp.SessionState) {
		s.ReconnectAttempts = 0
		s.VoluntarilyDisconnected = false
		s.LastMessageAt = time.Now()
		s.Initializing = false
		s.ConnectionStatus = update.Status
	})

	// 3: persist connected status.
	ctx := context.Background()
	if sess, err := m.sessions.GetByID(ctx, id); err == nil && sess != nil {
		if update.JID != "" {
			_ = sess.Connect(update.JID)
		}
		_ = m.sessions.Update(ctx, sess)
	}

	sock, ok := m.registry.get(id)
	if !ok {
		return
	}

	// 4: let MessageStore settle before anything else reads buffered state.
	go func() {
		time.Sleep(postOpenSyncWait)

		// 5: install full event handlers via Dispatcher, once.
		m.mu.Lock()
		already := m.dispatcherInstalled[id]
		m.dispatcherInstalled[id] = true
		m.mu.Unlock()
		_ = already // Dispatcher wiring happens one layer up (internal/dispatch), this just guards against double install.

		// 6: one-shot control-bot notification for telegram sources.
		if source == session.SourceTelegram && m.cfg.ControlBotJID != "" {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_, _ = sock.SendText(notifyCtx, m.cfg.ControlBotJID, fmt.Sprintf("session %s connected", id.String()), nil)
			cancel()
		}

		// 7: enqueue the channel-join side effect.
		if m.cfg.ChannelJID != "" {
			m.batcher.Enqueue(id, m.cfg.ChannelJID)
		}
	}()
}

func (m *Manager) onClose(id session.SessionID, update whatsapp.ConnectionUpdate, source session.Source) {
	ctx := context.Background()

	decision := m.connMgr.ClassifyDisconnect(update.StatusCode, update.Reason)

	if sess, err := m.sessions.GetByID(ctx, id); err == nil && sess != nil {
		sess.Disconnect()
		_ = m.sessions.Update(ctx, sess)
	}

	switch decision {
	case whatsapp.DecisionPermanentPurge:
		_ = m.authStore.Cleanup(ctx, id.String())
		if source == session.SourceWeb {
			_ = m.sessions.Delete(ctx, id)
		}
		m.registry.remove(id)
	case whatsapp.DecisionPermanentKeep:
		m.registry.remove(id)
	case whatsapp.DecisionReconnect:
		if m.cfg.Enable515Flow && update.StatusCode == streamRestart515 {
			if sock, ok := m.registry.get(id); ok {
				_ = sock.Close()
			}
			m.registry.remove(id)
			return
		}
		m.registry.mutateState(id, func(s *whatsapp.SessionState) {
			s.ReconnectAttempts++
		})
		// Only the attempt counter changes here; no reconnect, backoff or
		// jitter is scheduled. Sessions reconnect through the startup sweep
		// (AutoReconnectUseCase) or an explicit connect request.
	}
}

// GetSession implements whatsapp.SessionManager.
func (m *Manager) GetSession(sessionID session.SessionID) (whatsapp.Socket, bool) {
	return m.registry.get(sessionID)
}

// DisconnectSession implements whatsapp.SessionManager.
func (m *Manager) DisconnectSession(ctx context.Context, sessionID session.SessionID, forceCleanup bool) error {
	sock, ok := m.registry.get(sessionID)
	if !ok && !forceCleanup {
		return whatsapp.ErrClientNotFound
	}

	if ok {
		_ = sock.Disconnect(ctx)
		_ = sock.Close()
	}
	m.registry.remove(sessionID)

	if sess, err := m.sessions.GetByID(ctx, sessionID); err == nil && sess != nil {
		sess.MarkVoluntarilyDisconnected()
		_ = m.sessions.Update(ctx, sess)
	}

	if forceCleanup {
		return m.authStore.Cleanup(ctx, sessionID.String())
	}
	return nil
}

// PerformCompleteUserCleanup implements whatsapp.SessionManager.
func (m *Manager) PerformCompleteUserCleanup(ctx context.Context, sessionID session.SessionID) error {
	sess, _ := m.sessions.GetByID(ctx, sessionID)

	if sock, ok := m.registry.get(sessionID); ok {
		_ = sock.Disconnect(ctx)
		_ = sock.Close()
	}
	m.registry.remove(sessionID)

	if err := m.authStore.Cleanup(ctx, sessionID.String()); err != nil {
		return err
	}

	if sess != nil && sess.Source() == session.SourceWeb {
		return m.sessions.Delete(ctx, sessionID)
	}
	return nil
}

// IsReallyConnected implements whatsapp.SessionManager.
func (m *Manager) IsReallyConnected(sessionID session.SessionID) bool {
	sock, ok := m.registry.get(sessionID)
	if !ok {
		return false
	}
	return sock.IsConnected() && sock.IsLoggedIn()
}

// GetStats implements whatsapp.SessionManager.
func (m *Manager) GetStats() whatsapp.Stats {
	stats := whatsapp.Stats{}
	for _, state := range m.registry.snapshot() {
		stats.TotalSessions++
		switch state.ConnectionStatus {
		case whatsapp.StatusConnected, whatsapp.StatusAuthenticated:
			stats.ConnectedSessions++
		case whatsapp.StatusConnecting, whatsapp.StatusAuthenticating:
			stats.ConnectingSessions++
		case whatsapp.StatusError:
			stats.ErroredSessions++
		}
	}
	return stats
}

// Shutdown implements whatsapp.SessionManager: closes every socket in
// parallel, awaits each cleanup, then stops all background timers.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.shuttingDown {
		m.mu.Unlock()
		return nil
	}
	m.shuttingDown = true
	m.mu.Unlock()

	ids := m.registry.ids()
	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sock, ok := m.registry.get(id); ok {
				_ = sock.Disconnect(ctx)
				_ = sock.Close()
			}
			m.registry.remove(id)
		}()
	}
	wg.Wait()

	m.cancelJoin()
	m.batcher.Stop()
	cronCtx := m.cron.Stop()
	<-cronCtx.Done()

	return nil
}

func (m *Manager) probeLiveness(sessionID session.SessionID) {
	sock, ok := m.registry.get(sessionID)
	if !ok {
		return
	}
	if !sock.IsConnected() {
		m.log.Warn("sessionmgr: liveness probe found a disconnected session")
	}
}

func (m *Manager) dropAuxState(sessionID session.SessionID) {
	m.mu.Lock()
	delete(m.dispatcherInstalled, sessionID)
	m.mu.Unlock()
}
