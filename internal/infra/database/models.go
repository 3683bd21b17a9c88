package database

import (
	"fmt"
	"net/url"
	"time"

	"wazmeow/internal/domain/session"

	"github.com/uptrace/bun"
)

// WazMeowSessionModel represents the database model for sessions.
type WazMeowSessionModel struct {
	bun.BaseModel `bun:"table:wazmeow_sessions"`

	ID                      string    `bun:"id,pk,type:varchar(64)" json:"id"`
	UserID                  string    `bun:"user_id,unique,notnull,type:varchar(64)" json:"user_id"`
	PhoneNumber             string    `bun:"phone_number,type:varchar(32)" json:"phone_number,omitempty"`
	Source                  string    `bun:"source,notnull,type:varchar(20),default:'unknown'" json:"source"`
	Status                  string    `bun:"status,notnull,type:varchar(20),default:'disconnected'" json:"status"`
	WaJID                   string    `bun:"wa_jid,type:varchar(100)" json:"wa_jid,omitempty"`
	QRCode                  string    `bun:"qr_code,type:text" json:"qr_code,omitempty"`
	ProxyURL                string    `bun:"proxy_url,type:text" json:"proxy_url,omitempty"`
	ReconnectAttempts       int       `bun:"reconnect_attempts,notnull,default:0" json:"reconnect_attempts"`
	Detected                bool      `bun:"detected,notnull,default:false" json:"detected"`
	VoluntarilyDisconnected bool      `bun:"voluntarily_disconnected,notnull,default:false" json:"voluntarily_disconnected"`
	CreatedAt               time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt               time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
	LastMessageAt           time.Time `bun:"last_message_at,type:datetime,nullzero" json:"last_message_at,omitempty"`
}

// ToWazMeowSessionModel converts a domain session to its database model.
func ToWazMeowSessionModel(sess *session.Session) *WazMeowSessionModel {
	return &WazMeowSessionModel{
		ID:                      sess.ID().String(),
		UserID:                  sess.UserID(),
		PhoneNumber:             sess.PhoneNumber(),
		Source:                  sess.Source().String(),
		Status:                  sess.Status().String(),
		WaJID:                   sess.WaJID(),
		QRCode:                  sess.QRCode(),
		ProxyURL:                sess.ProxyURL(),
		ReconnectAttempts:       sess.ReconnectAttempts(),
		Detected:                sess.Detected(),
		VoluntarilyDisconnected: sess.VoluntarilyDisconnected(),
		CreatedAt:               sess.CreatedAt(),
		UpdatedAt:               sess.UpdatedAt(),
		LastMessageAt:           sess.LastMessageAt(),
	}
}

// FromWazMeowSessionModel converts a database model back to a domain
// session.
func FromWazMeowSessionModel(model *WazMeowSessionModel) (*session.Session, error) {
	sessionID, err := session.SessionIDFromString(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", model.ID, err)
	}

	src, err := session.SourceFromString(model.Source)
	if err != nil {
		return nil, fmt.Errorf("invalid source %q: %w", model.Source, err)
	}

	status, err := session.StatusFromString(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid status %q: %w", model.Status, err)
	}

	if model.ProxyURL != "" {
		if _, err := url.Parse(model.ProxyURL); err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
	}

	return session.RestoreSession(
		sessionID,
		model.UserID, model.PhoneNumber,
		src,
		status,
		model.WaJID, model.QRCode, model.ProxyURL,
		model.ReconnectAttempts,
		model.Detected, model.VoluntarilyDisconnected,
		model.CreatedAt, model.UpdatedAt, model.LastMessageAt,
	), nil
}
