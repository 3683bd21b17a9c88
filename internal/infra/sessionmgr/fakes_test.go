package sessionmgr

import (
	"context"
	"errors"
	"io"
	"sync"

	"wazmeow/internal/domain/auth"
	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// fakeSocket is a minimal whatsapp.Socket test double.
type fakeSocket struct {
	sessionID   session.SessionID
	connected   bool
	loggedIn    bool
	closed      bool
	sentTexts   []string
	followedJID []string
}

func (f *fakeSocket) SessionID() session.SessionID { return f.sessionID }

func (f *fakeSocket) SendText(ctx context.Context, jid, text string, mentions []string) (whatsapp.SendResult, error) {
	f.sentTexts = append(f.sentTexts, text)
	return whatsapp.SendResult{MessageID: "fake"}, nil
}

func (f *fakeSocket) User() (string, bool) { return f.sessionID.String(), f.loggedIn }

func (f *fakeSocket) SendMessage(ctx context.Context, jid string, content whatsapp.MessageContent, opts whatsapp.SendOptions) (whatsapp.SendResult, error) {
	return whatsapp.SendResult{}, nil
}

func (f *fakeSocket) GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error) {
	return nil, nil
}
func (f *fakeSocket) OnWhatsApp(ctx context.Context, phones []string) ([]whatsapp.RegistrationStatus, error) {
	return nil, nil
}
func (f *fakeSocket) NewsletterFollow(ctx context.Context, newsletterJID string) error {
	f.followedJID = append(f.followedJID, newsletterJID)
	return nil
}
func (f *fakeSocket) SubscribeNewsletterUpdates(ctx context.Context, jid string) error { return nil }
func (f *fakeSocket) NewsletterUnmute(ctx context.Context, jid string) error           { return nil }
func (f *fakeSocket) NewsletterMetadata(ctx context.Context, jid string) (*whatsapp.NewsletterMetadata, error) {
	return nil, nil
}
func (f *fakeSocket) ChatModify(ctx context.Context, jid string, mod whatsapp.ChatModification) error {
	return nil
}
func (f *fakeSocket) ResolveLID(ctx context.Context, lid string) (string, error) { return lid, nil }
func (f *fakeSocket) SetGetMessageHook(fn whatsapp.GetMessageFunc)               {}
func (f *fakeSocket) Events() whatsapp.EventBus                                 { return nil }
func (f *fakeSocket) RequestPairingCode(ctx context.Context, phoneNumber string) (string, error) {
	return "", nil
}
func (f *fakeSocket) Connect(ctx context.Context) error { f.connected = true; return nil }
func (f *fakeSocket) Disconnect(ctx context.Context) error {
	f.connected = false
	return nil
}
func (f *fakeSocket) IsConnected() bool { return f.connected }
func (f *fakeSocket) IsLoggedIn() bool  { return f.loggedIn }
func (f *fakeSocket) Close() error      { f.closed = true; return nil }

// fakeConnectionManager is a minimal whatsapp.ConnectionManager test double.
type fakeConnectionManager struct {
	mu      sync.Mutex
	created map[session.SessionID]*fakeSocket
	onErr   error
}

func newFakeConnectionManager() *fakeConnectionManager {
	return &fakeConnectionManager{created: make(map[session.SessionID]*fakeSocket)}
}

func (f *fakeConnectionManager) CreateConnection(ctx context.Context, sessionID session.SessionID, phoneNumber string, callbacks whatsapp.Callbacks, allowPairing bool) (whatsapp.Socket, error) {
	if f.onErr != nil {
		return nil, f.onErr
	}
	sock := &fakeSocket{sessionID: sessionID, connected: true, loggedIn: true}
	f.mu.Lock()
	f.created[sessionID] = sock
	f.mu.Unlock()
	return sock, nil
}

func (f *fakeConnectionManager) ClassifyDisconnect(statusCode int, reason string) whatsapp.DisconnectDecision {
	return whatsapp.DecisionReconnect
}

// fakeSessionRepo is an in-memory session.Repository test double.
type fakeSessionRepo struct {
	mu       sync.Mutex
	byID     map[string]*session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[string]*session.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, sess *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sess.ID().String()] = sess
	return nil
}
func (r *fakeSessionRepo) GetByID(ctx context.Context, id session.SessionID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id.String()]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}
func (r *fakeSessionRepo) GetByUserID(ctx context.Context, userID string) (*session.Session, error) {
	return r.GetByID(ctx, session.NewSessionID(userID))
}
func (r *fakeSessionRepo) List(ctx context.Context, limit, offset int) ([]*session.Session, int, error) {
	return nil, 0, nil
}
func (r *fakeSessionRepo) Update(ctx context.Context, sess *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sess.ID().String()] = sess
	return nil
}
func (r *fakeSessionRepo) Delete(ctx context.Context, id session.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id.String())
	return nil
}
func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id session.SessionID, status session.Status) error {
	return nil
}
func (r *fakeSessionRepo) GetActiveCount(ctx context.Context) (int, error) { return 0, nil }
func (r *fakeSessionRepo) GetByStatus(ctx context.Context, status session.Status, limit, offset int) ([]*session.Session, int, error) {
	return nil, 0, nil
}
func (r *fakeSessionRepo) Exists(ctx context.Context, id session.SessionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id.String()]
	return ok, nil
}
func (r *fakeSessionRepo) ListEligibleForReconnect(ctx context.Context) ([]*session.Session, error) {
	return nil, nil
}

// fakeAuthStore is a minimal auth.Store test double.
type fakeAuthStore struct {
	mu       sync.Mutex
	cleaned  []string
}

func (f *fakeAuthStore) Open(ctx context.Context, sessionID string) (auth.Handle, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeAuthStore) HasValid(ctx context.Context, sessionID string) (bool, error) {
	return false, nil
}
func (f *fakeAuthStore) Cleanup(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, sessionID)
	return nil
}
func (f *fakeAuthStore) BackupHealthy() bool { return true }

// noopLogger satisfies logger.Logger with no-ops, for tests that don't
// assert on log output.
type noopLogger struct{}

func (noopLogger) Debug(string) {}
func (noopLogger) Info(string)  {}
func (noopLogger) Warn(string)  {}
func (noopLogger) Error(string) {}
func (noopLogger) Fatal(string) {}

func (noopLogger) DebugWithFields(string, logger.Fields) {}
func (noopLogger) InfoWithFields(string, logger.Fields)  {}
func (noopLogger) WarnWithFields(string, logger.Fields)  {}
func (noopLogger) ErrorWithFields(string, logger.Fields) {}
func (noopLogger) FatalWithFields(string, logger.Fields) {}

func (noopLogger) DebugWithError(string, error, logger.Fields) {}
func (noopLogger) InfoWithError(string, error, logger.Fields)  {}
func (noopLogger) WarnWithError(string, error, logger.Fields)  {}
func (noopLogger) ErrorWithError(string, error, logger.Fields) {}
func (noopLogger) FatalWithError(string, error, logger.Fields) {}

func (noopLogger) WithContext(context.Context) logger.Logger      { return noopLogger{} }
func (noopLogger) WithFields(logger.Fields) logger.Logger         { return noopLogger{} }
func (noopLogger) WithField(string, interface{}) logger.Logger    { return noopLogger{} }
func (noopLogger) WithError(error) logger.Logger                  { return noopLogger{} }

func (noopLogger) SetLevel(logger.Level)       {}
func (noopLogger) GetLevel() logger.Level      { return logger.InfoLevel }
func (noopLogger) SetOutput(io.Writer)         {}

func (noopLogger) IsDebugEnabled() bool { return false }
func (noopLogger) IsInfoEnabled() bool  { return false }
func (noopLogger) IsWarnEnabled() bool  { return false }
func (noopLogger) IsErrorEnabled() bool { return false }
