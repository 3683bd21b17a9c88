package message

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/shared/utils"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// SendImageMessageUseCase handles sending WhatsApp image messages
type SendImageMessageUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewSendImageMessageUseCase creates a new send image message use case
func NewSendImageMessageUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *SendImageMessageUseCase {
	return &SendImageMessageUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// SendImageMessageRequest represents the request to send an image message
type SendImageMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to" validate:"required"`
	Image     string            `json:"image" validate:"required"` // Base64 string
	Caption   string            `json:"caption" validate:"max=1024"`
	MimeType  string            `json:"mime_type"`
}

// SendImageMessageResponse represents the response from sending an image message
type SendImageMessageResponse struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to"`
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const maxImageSize = 16 * 1024 * 1024 // 16MB

// Execute sends an image message via WhatsApp
func (uc *SendImageMessageUseCase) Execute(ctx context.Context, req SendImageMessageRequest) (*SendImageMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for send image message", err, logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
		})
		return nil, err
	}

	if strings.TrimSpace(req.Image) == "" {
		return nil, fmt.Errorf("image data must not be empty")
	}

	sess, err := uc.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get session", err, logger.Fields{
			"session_id": req.SessionID.String(),
		})
		return nil, err
	}

	if !sess.IsConnected() {
		return nil, session.ErrSessionNotConnected
	}

	socket, ok := uc.sessionMgr.GetSession(sess.ID())
	if !ok {
		return nil, whatsapp.ErrClientNotFound
	}

	imageData, err := decodeBase64Payload(req.Image)
	if err != nil {
		return &SendImageMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = detectImageMimeType(imageData)
	}
	if !isValidImageMimeType(mimeType) {
		err := fmt.Errorf("unsupported image type: %s", mimeType)
		return &SendImageMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}
	if len(imageData) > maxImageSize {
		err := fmt.Errorf("image too large: %d bytes (max: %d bytes)", len(imageData), maxImageSize)
		return &SendImageMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	formattedTo := utils.FormatWhatsAppJID(req.To)

	content := whatsapp.MessageContent{
		Text: req.Caption,
		Extra: map[string]interface{}{
			"media_type": "image",
			"mime_type":  mimeType,
			"data":       imageData,
		},
	}

	result, err := socket.SendMessage(ctx, formattedTo, content, whatsapp.SendOptions{})
	if err != nil {
		uc.logger.ErrorWithError("failed to send WhatsApp image message", err, logger.Fields{
			"session_id": sess.ID().String(),
			"to":         formattedTo,
			"mime_type":  mimeType,
		})
		return &SendImageMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	uc.logger.InfoWithFields("WhatsApp image message sent successfully", logger.Fields{
		"session_id":  sess.ID().String(),
		"to":          formattedTo,
		"mime_type":   mimeType,
		"image_size":  len(imageData),
		"has_caption": req.Caption != "",
	})

	return &SendImageMessageResponse{
		SessionID: sess.ID(),
		To:        req.To,
		Success:   true,
		MessageID: result.MessageID,
	}, nil
}

// decodeBase64Payload strips an optional data-URL prefix and decodes the
// remaining base64 payload. Shared by every media send use case.
func decodeBase64Payload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URL format")
		}
		payload = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return data, nil
}

// detectImageMimeType detects MIME type based on magic bytes
func detectImageMimeType(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}

	switch {
	case data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46:
		return "image/gif"
	case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// isValidImageMimeType validates if the MIME type is supported for images
func isValidImageMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
