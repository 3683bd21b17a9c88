package session

import (
	"net/url"
	"time"
)

// Session represents one hosted WhatsApp client instance, keyed by
// SessionID. Mutated only by the owning SessionManager.
type Session struct {
	id                      SessionID
	userID                  string
	phoneNumber             string
	source                  Source
	status                  Status
	waJID                   string
	qrCode                  string
	proxyURL                string
	reconnectAttempts       int
	detected                bool
	voluntarilyDisconnected bool
	createdAt               time.Time
	updatedAt               time.Time
	lastMessageAt           time.Time
}

// NewSession creates a new session for the given user.
func NewSession(userID, phoneNumber string, source Source) *Session {
	now := time.Now()
	return &Session{
		id:          NewSessionID(userID),
		userID:      userID,
		phoneNumber: phoneNumber,
		source:      source,
		status:      StatusDisconnected,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreSession restores a session from persistence.
func RestoreSession(
	id SessionID,
	userID, phoneNumber string,
	source Source,
	status Status,
	waJID, qrCode, proxyURL string,
	reconnectAttempts int,
	detected, voluntarilyDisconnected bool,
	createdAt, updatedAt, lastMessageAt time.Time,
) *Session {
	return &Session{
		id:                      id,
		userID:                  userID,
		phoneNumber:             phoneNumber,
		source:                  source,
		status:                  status,
		waJID:                   waJID,
		qrCode:                  qrCode,
		proxyURL:                proxyURL,
		reconnectAttempts:       reconnectAttempts,
		detected:                detected,
		voluntarilyDisconnected: voluntarilyDisconnected,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
		lastMessageAt:           lastMessageAt,
	}
}

// Connect marks the session as connected with the given WhatsApp JID and
// resets the reconnect-attempt counter, per the on-open contract.
func (s *Session) Connect(waJID string) error {
	if waJID == "" {
		return ErrInvalidWhatsAppJID
	}

	s.waJID = waJID
	s.status = StatusConnected
	s.reconnectAttempts = 0
	s.voluntarilyDisconnected = false
	s.updatedAt = time.Now()

	return nil
}

// Disconnect marks the session as disconnected.
func (s *Session) Disconnect() {
	s.status = StatusDisconnected
	s.updatedAt = time.Now()
}

// SetConnecting marks the session as connecting.
func (s *Session) SetConnecting() {
	s.status = StatusConnecting
	s.updatedAt = time.Now()
}

// MarkVoluntarilyDisconnected records that the session owner requested the
// disconnect, suppressing automatic reconnection.
func (s *Session) MarkVoluntarilyDisconnected() {
	s.voluntarilyDisconnected = true
	s.status = StatusDisconnected
	s.updatedAt = time.Now()
}

// IncrementReconnectAttempts bumps the reconnect counter. The SessionManager
// calls it on a reconnect-class disconnect; no backoff schedule reads it.
func (s *Session) IncrementReconnectAttempts() {
	s.reconnectAttempts++
	s.updatedAt = time.Now()
}

// SetQRCode updates the session QR/pairing code.
func (s *Session) SetQRCode(qrCode string) {
	s.qrCode = qrCode
	s.updatedAt = time.Now()
}

// ClearQRCode clears the session QR/pairing code.
func (s *Session) ClearQRCode() {
	s.qrCode = ""
	s.updatedAt = time.Now()
}

// MarkDetected flags the session as having triggered anti-abuse detection.
func (s *Session) MarkDetected() {
	s.detected = true
	s.updatedAt = time.Now()
}

// TouchLastMessage records the time of the latest message on the session
// row. The health monitor reads the SessionManager's in-memory copy, not
// this field.
func (s *Session) TouchLastMessage() {
	s.lastMessageAt = time.Now()
	s.updatedAt = time.Now()
}

// SetPhoneNumber updates the phone number used for pairing requests.
func (s *Session) SetPhoneNumber(phone string) {
	s.phoneNumber = phone
	s.updatedAt = time.Now()
}

// SetProxyURL updates the session proxy URL with validation.
func (s *Session) SetProxyURL(proxyURL string) error {
	if err := ValidateProxyURL(proxyURL); err != nil {
		return err
	}
	s.proxyURL = proxyURL
	s.updatedAt = time.Now()
	return nil
}

// ClearProxyURL clears the session proxy URL.
func (s *Session) ClearProxyURL() {
	s.proxyURL = ""
	s.updatedAt = time.Now()
}

// HasProxy returns true if the session has a proxy configured.
func (s *Session) HasProxy() bool {
	return s.proxyURL != ""
}

// GetProxyType returns the proxy scheme from the proxy URL.
func (s *Session) GetProxyType() string {
	if !s.HasProxy() {
		return ""
	}
	parsed, err := url.Parse(s.proxyURL)
	if err != nil {
		return "unknown"
	}
	return parsed.Scheme
}

// CanConnect returns true if the session can be connected.
func (s *Session) CanConnect() bool {
	return s.status != StatusConnected
}

// IsConnected returns true if the session is connected.
func (s *Session) IsConnected() bool {
	return s.status == StatusConnected
}

// IsConnecting returns true if the session is in connecting state.
func (s *Session) IsConnecting() bool {
	return s.status == StatusConnecting
}

// ShouldAutoReconnect returns true if the session has a WhatsApp JID and
// was not explicitly disconnected by its owner.
func (s *Session) ShouldAutoReconnect() bool {
	return !s.voluntarilyDisconnected && s.waJID != ""
}

// Getters.

func (s *Session) ID() SessionID               { return s.id }
func (s *Session) UserID() string              { return s.userID }
func (s *Session) PhoneNumber() string         { return s.phoneNumber }
func (s *Session) Source() Source              { return s.source }
func (s *Session) Status() Status              { return s.status }
func (s *Session) WaJID() string               { return s.waJID }
func (s *Session) QRCode() string              { return s.qrCode }
func (s *Session) ProxyURL() string            { return s.proxyURL }
func (s *Session) ReconnectAttempts() int      { return s.reconnectAttempts }
func (s *Session) Detected() bool              { return s.detected }
func (s *Session) VoluntarilyDisconnected() bool {
	return s.voluntarilyDisconnected
}
func (s *Session) CreatedAt() time.Time     { return s.createdAt }
func (s *Session) UpdatedAt() time.Time     { return s.updatedAt }
func (s *Session) LastMessageAt() time.Time { return s.lastMessageAt }

// Validate validates the session entity.
func (s *Session) Validate() error {
	if s.userID == "" {
		return ErrEmptySessionID
	}
	if !s.status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
