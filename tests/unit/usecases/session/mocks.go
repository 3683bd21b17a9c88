package usecases_session

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// MockSessionRepository is a mock implementation of session.Repository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id session.SessionID) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByUserID(ctx context.Context, userID string) (*session.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id session.SessionID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, limit, offset int) ([]*session.Session, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*session.Session), args.Int(1), args.Error(2)
}

func (m *MockSessionRepository) GetByStatus(ctx context.Context, status session.Status, limit, offset int) ([]*session.Session, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*session.Session), args.Int(1), args.Error(2)
}

func (m *MockSessionRepository) GetActiveCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionRepository) Exists(ctx context.Context, id session.SessionID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, id session.SessionID, status session.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSessionRepository) ListEligibleForReconnect(ctx context.Context) ([]*session.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

// MockLogger is a mock implementation of logger.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string) {
	m.Called(msg)
}

func (m *MockLogger) Info(msg string) {
	m.Called(msg)
}

func (m *MockLogger) Warn(msg string) {
	m.Called(msg)
}

func (m *MockLogger) Error(msg string) {
	m.Called(msg)
}

func (m *MockLogger) Fatal(msg string) {
	m.Called(msg)
}

func (m *MockLogger) DebugWithFields(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) InfoWithFields(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) WarnWithFields(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) ErrorWithFields(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) FatalWithFields(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) DebugWithError(msg string, err error, fields logger.Fields) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) InfoWithError(msg string, err error, fields logger.Fields) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) WarnWithError(msg string, err error, fields logger.Fields) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) ErrorWithError(msg string, err error, fields logger.Fields) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) FatalWithError(msg string, err error, fields logger.Fields) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	return m
}

func (m *MockLogger) WithFields(fields logger.Fields) logger.Logger {
	return m
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	return m
}

func (m *MockLogger) WithError(err error) logger.Logger {
	return m
}

func (m *MockLogger) SetLevel(level logger.Level) {
	m.Called(level)
}

func (m *MockLogger) GetLevel() logger.Level {
	args := m.Called()
	return args.Get(0).(logger.Level)
}

func (m *MockLogger) SetOutput(output io.Writer) {
	m.Called(output)
}

func (m *MockLogger) IsDebugEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLogger) IsInfoEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLogger) IsWarnEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLogger) IsErrorEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockSessionManager is a mock implementation of whatsapp.SessionManager
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) CreateSession(ctx context.Context, userID, phone string, callbacks whatsapp.Callbacks, isReconnect bool, source session.Source, allowPairing bool) (whatsapp.Socket, error) {
	args := m.Called(ctx, userID, phone, callbacks, isReconnect, source, allowPairing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(whatsapp.Socket), args.Error(1)
}

func (m *MockSessionManager) GetSession(sessionID session.SessionID) (whatsapp.Socket, bool) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(whatsapp.Socket), args.Bool(1)
}

func (m *MockSessionManager) DisconnectSession(ctx context.Context, sessionID session.SessionID, forceCleanup bool) error {
	args := m.Called(ctx, sessionID, forceCleanup)
	return args.Error(0)
}

func (m *MockSessionManager) PerformCompleteUserCleanup(ctx context.Context, sessionID session.SessionID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionManager) IsReallyConnected(sessionID session.SessionID) bool {
	args := m.Called(sessionID)
	return args.Bool(0)
}

func (m *MockSessionManager) GetStats() whatsapp.Stats {
	args := m.Called()
	return args.Get(0).(whatsapp.Stats)
}

func (m *MockSessionManager) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSocket is a mock implementation of whatsapp.Socket
type MockSocket struct {
	mock.Mock
}

func (m *MockSocket) SessionID() session.SessionID {
	args := m.Called()
	return args.Get(0).(session.SessionID)
}

func (m *MockSocket) SendText(ctx context.Context, jid, text string, mentions []string) (whatsapp.SendResult, error) {
	args := m.Called(ctx, jid, text, mentions)
	return args.Get(0).(whatsapp.SendResult), args.Error(1)
}

func (m *MockSocket) User() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func (m *MockSocket) SendMessage(ctx context.Context, jid string, content whatsapp.MessageContent, opts whatsapp.SendOptions) (whatsapp.SendResult, error) {
	args := m.Called(ctx, jid, content, opts)
	return args.Get(0).(whatsapp.SendResult), args.Error(1)
}

func (m *MockSocket) GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error) {
	args := m.Called(ctx, groupJID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*groupmeta.Metadata), args.Error(1)
}

func (m *MockSocket) OnWhatsApp(ctx context.Context, phones []string) ([]whatsapp.RegistrationStatus, error) {
	args := m.Called(ctx, phones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]whatsapp.RegistrationStatus), args.Error(1)
}

func (m *MockSocket) NewsletterFollow(ctx context.Context, newsletterJID string) error {
	args := m.Called(ctx, newsletterJID)
	return args.Error(0)
}

func (m *MockSocket) SubscribeNewsletterUpdates(ctx context.Context, newsletterJID string) error {
	args := m.Called(ctx, newsletterJID)
	return args.Error(0)
}

func (m *MockSocket) NewsletterUnmute(ctx context.Context, newsletterJID string) error {
	args := m.Called(ctx, newsletterJID)
	return args.Error(0)
}

func (m *MockSocket) NewsletterMetadata(ctx context.Context, newsletterJID string) (*whatsapp.NewsletterMetadata, error) {
	args := m.Called(ctx, newsletterJID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*whatsapp.NewsletterMetadata), args.Error(1)
}

func (m *MockSocket) ChatModify(ctx context.Context, jid string, mod whatsapp.ChatModification) error {
	args := m.Called(ctx, jid, mod)
	return args.Error(0)
}

func (m *MockSocket) ResolveLID(ctx context.Context, lid string) (string, error) {
	args := m.Called(ctx, lid)
	return args.String(0), args.Error(1)
}

func (m *MockSocket) SetGetMessageHook(fn whatsapp.GetMessageFunc) {
	m.Called(fn)
}

func (m *MockSocket) Events() whatsapp.EventBus {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(whatsapp.EventBus)
}

func (m *MockSocket) RequestPairingCode(ctx context.Context, phoneNumber string) (string, error) {
	args := m.Called(ctx, phoneNumber)
	return args.String(0), args.Error(1)
}

func (m *MockSocket) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSocket) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSocket) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSocket) IsLoggedIn() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSocket) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockValidator is a mock implementation of validator.Validator
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(s interface{}) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockValidator) ValidateField(field interface{}, tag string) error {
	args := m.Called(field, tag)
	return args.Error(0)
}

func (m *MockValidator) RegisterValidation(tag string, fn validator.ValidationFunc) error {
	args := m.Called(tag, fn)
	return args.Error(0)
}
