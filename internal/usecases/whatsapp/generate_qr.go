package whatsapp

import (
	"context"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// GenerateQRUseCase handles QR code generation for WhatsApp authentication.
// QR payloads arrive asynchronously off the driver's event bus and are
// persisted onto the session row by SessionManager's onAuthenticating
// handler, so this use case's job is to ensure a connection attempt is in
// flight and then surface whatever QR the session row currently holds.
type GenerateQRUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
}

// NewGenerateQRUseCase creates a new generate QR use case
func NewGenerateQRUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger) *GenerateQRUseCase {
	return &GenerateQRUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
	}
}

// GenerateQRRequest represents the request to generate a QR code
type GenerateQRRequest struct {
	SessionID session.SessionID `json:"session_id"`
}

// GenerateQRResponse represents the response from generating a QR code
type GenerateQRResponse struct {
	SessionID session.SessionID `json:"session_id"`
	QRCode    string            `json:"qr_code,omitempty"`
	Message   string            `json:"message"`
}

// Execute generates a QR code for WhatsApp authentication
func (uc *GenerateQRUseCase) Execute(ctx context.Context, req GenerateQRRequest) (*GenerateQRResponse, error) {
	sess, err := uc.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get session", err, logger.Fields{
			"session_id": req.SessionID.String(),
		})
		return nil, err
	}

	if sess.IsConnected() {
		uc.logger.WarnWithFields("session already connected", logger.Fields{
			"session_id": sess.ID().String(),
			"status":     sess.Status().String(),
		})
		return nil, session.ErrSessionAlreadyConnected
	}

	if sess.QRCode() != "" {
		uc.logger.InfoWithFields("returning saved QR code from database", logger.Fields{
			"session_id": sess.ID().String(),
			"qr_length":  len(sess.QRCode()),
		})
		return &GenerateQRResponse{
			SessionID: sess.ID(),
			QRCode:    sess.QRCode(),
			Message:   "QR code retrieved from database. Scan with WhatsApp mobile app.",
		}, nil
	}

	if _, ok := uc.sessionMgr.GetSession(sess.ID()); !ok {
		if _, err := uc.sessionMgr.CreateSession(ctx, sess.UserID(), sess.PhoneNumber(), whatsapp.Callbacks{}, false, sess.Source(), false); err != nil {
			uc.logger.ErrorWithError("failed to start whatsapp session for QR login", err, logger.Fields{
				"session_id": sess.ID().String(),
			})
			return nil, err
		}
	}

	uc.logger.InfoWithFields("QR login in progress, waiting for driver to emit a code", logger.Fields{
		"session_id": sess.ID().String(),
	})

	return &GenerateQRResponse{
		SessionID: sess.ID(),
		Message:   "QR code requested. Poll this endpoint until a code is returned.",
	}, nil
}

// RefreshQRRequest represents the request to refresh a QR code
type RefreshQRRequest struct {
	SessionID session.SessionID `json:"session_id"`
}

// RefreshQRResponse represents the response from refreshing a QR code
type RefreshQRResponse struct {
	SessionID session.SessionID `json:"session_id"`
	QRCode    string            `json:"qr_code,omitempty"`
	Message   string            `json:"message"`
}

// ExecuteRefresh clears a stale QR code and re-requests a fresh one.
func (uc *GenerateQRUseCase) ExecuteRefresh(ctx context.Context, req RefreshQRRequest) (*RefreshQRResponse, error) {
	sess, err := uc.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get session for QR refresh", err, logger.Fields{
			"session_id": req.SessionID.String(),
		})
		return nil, err
	}

	if sess.IsConnected() {
		uc.logger.InfoWithFields("session already authenticated, cannot refresh QR", logger.Fields{
			"session_id": sess.ID().String(),
		})
		return &RefreshQRResponse{
			SessionID: sess.ID(),
			Message:   "Session already authenticated",
		}, nil
	}

	sess.ClearQRCode()
	if err := uc.sessionRepo.Update(ctx, sess); err != nil {
		uc.logger.ErrorWithError("failed to clear stale QR code", err, logger.Fields{
			"session_id": sess.ID().String(),
		})
		return nil, err
	}

	if _, ok := uc.sessionMgr.GetSession(sess.ID()); !ok {
		if _, err := uc.sessionMgr.CreateSession(ctx, sess.UserID(), sess.PhoneNumber(), whatsapp.Callbacks{}, true, sess.Source(), false); err != nil {
			uc.logger.ErrorWithError("failed to restart whatsapp session for QR refresh", err, logger.Fields{
				"session_id": sess.ID().String(),
			})
			return nil, err
		}
	}

	uc.logger.InfoWithFields("QR code refresh requested", logger.Fields{
		"session_id": sess.ID().String(),
	})

	return &RefreshQRResponse{
		SessionID: sess.ID(),
		Message:   "QR code refresh requested. Poll this endpoint until a code is returned.",
	}, nil
}
