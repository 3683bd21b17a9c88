package session

import (
	"context"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// ConnectUseCase handles session connection to WhatsApp
type ConnectUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
}

// NewConnectUseCase creates a new connect session use case
func NewConnectUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger) *ConnectUseCase {
	return &ConnectUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
	}
}

// ConnectRequest represents the request to connect a session
type ConnectRequest struct {
	SessionID    session.SessionID `json:"session_id"`
	AllowPairing bool              `json:"allow_pairing"`
}

// ConnectResponse represents the response from connecting a session
type ConnectResponse struct {
	Session   *session.Session `json:"session"`
	QRCode    string           `json:"qr_code,omitempty"`
	NeedsAuth bool             `json:"needs_auth"`
	Message   string           `json:"message"`
}

// Execute connects a session to WhatsApp
func (uc *ConnectUseCase) Execute(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	sess, err := uc.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get session", err, logger.Fields{
			"session_id": req.SessionID.String(),
		})
		return nil, err
	}

	if sess.Status() == session.StatusConnected {
		uc.logger.WarnWithFields("session already connected", logger.Fields{
			"session_id": sess.ID().String(),
			"status":     sess.Status().String(),
		})
		return nil, session.ErrSessionAlreadyConnected
	}

	if !sess.CanConnect() {
		uc.logger.WarnWithFields("session cannot be connected", logger.Fields{
			"session_id": sess.ID().String(),
			"status":     sess.Status().String(),
		})
		return nil, session.ErrSessionInvalidState
	}

	sess.SetConnecting()
	if err := uc.sessionRepo.Update(ctx, sess); err != nil {
		uc.logger.ErrorWithError("failed to update session status", err, logger.Fields{
			"session_id": sess.ID().String(),
		})
		return nil, err
	}

	callbacks := whatsapp.Callbacks{}
	_, err = uc.sessionMgr.CreateSession(ctx, sess.UserID(), sess.PhoneNumber(), callbacks, false, sess.Source(), req.AllowPairing)
	if err != nil {
		uc.logger.ErrorWithError("failed to create whatsapp session", err, logger.Fields{
			"session_id": sess.ID().String(),
		})
		sess.Disconnect()
		uc.sessionRepo.Update(ctx, sess)
		return nil, err
	}

	response := &ConnectResponse{
		Session:   sess,
		QRCode:    sess.QRCode(),
		NeedsAuth: sess.WaJID() == "",
	}
	if response.NeedsAuth {
		response.Message = "Connection established, authentication required"
	} else {
		response.Message = "Connected and authenticated successfully"
	}

	uc.logger.InfoWithFields("session connection processed", logger.Fields{
		"session_id": sess.ID().String(),
		"needs_auth": response.NeedsAuth,
	})

	return response, nil
}
