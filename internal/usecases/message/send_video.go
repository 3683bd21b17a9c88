package message

import (
	"context"
	"fmt"
	"strings"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/shared/utils"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// SendVideoMessageUseCase handles sending WhatsApp video messages
type SendVideoMessageUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewSendVideoMessageUseCase creates a new send video message use case
func NewSendVideoMessageUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *SendVideoMessageUseCase {
	return &SendVideoMessageUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// SendVideoMessageRequest represents the request to send a video message
type SendVideoMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to" validate:"required"`
	Video     string            `json:"video" validate:"required"` // Base64 string
	Caption   string            `json:"caption" validate:"max=1024"`
	MimeType  string            `json:"mime_type"`
}

// SendVideoMessageResponse represents the response from sending a video message
type SendVideoMessageResponse struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to"`
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const maxVideoSize = 64 * 1024 * 1024 // 64MB

// Execute sends a video message via WhatsApp
func (uc *SendVideoMessageUseCase) Execute(ctx context.Context, req SendVideoMessageRequest) (*SendVideoMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for send video message", err, logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
		})
		return nil, err
	}

	if strings.TrimSpace(req.Video) == "" {
		return nil, fmt.Errorf("video data must not be empty")
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

	videoData, err := decodeBase64Payload(req.Video)
	if err != nil {
		return &SendVideoMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = detectVideoMimeType(videoData)
	}
	if !isValidVideoMimeType(mimeType) {
		err := fmt.Errorf("unsupported video type: %s", mimeType)
		return &SendVideoMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}
	if len(videoData) > maxVideoSize {
		err := fmt.Errorf("video too large: %d bytes (max: %d bytes)", len(videoData), maxVideoSize)
		return &SendVideoMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	formattedTo := utils.FormatWhatsAppJID(req.To)

	content := whatsapp.MessageContent{
		Text: req.Caption,
		Extra: map[string]interface{}{
			"media_type": "video",
			"mime_type":  mimeType,
			"data":       videoData,
		},
	}

	result, err := socket.SendMessage(ctx, formattedTo, content, whatsapp.SendOptions{})
	if err != nil {
		uc.logger.ErrorWithError("failed to send WhatsApp video message", err, logger.Fields{
			"session_id": sess.ID().String(),
			"to":         formattedTo,
			"mime_type":  mimeType,
		})
		return &SendVideoMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	uc.logger.InfoWithFields("WhatsApp video message sent successfully", logger.Fields{
		"session_id": sess.ID().String(),
		"to":         formattedTo,
		"mime_type":  mimeType,
		"video_size": len(videoData),
	})

	return &SendVideoMessageResponse{
		SessionID: sess.ID(),
		To:        req.To,
		Success:   true,
		MessageID: result.MessageID,
	}, nil
}

// detectVideoMimeType detects MIME type based on magic bytes
func detectVideoMimeType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}

	switch {
	case data[4] == 0x66 && data[5] == 0x74 && data[6] == 0x79 && data[7] == 0x70: // MP4
		return "video/mp4"
	case data[0] == 0x1A && data[1] == 0x45 && data[2] == 0xDF && data[3] == 0xA3: // WebM/MKV
		return "video/webm"
	case data[0] == 0x46 && data[1] == 0x4C && data[2] == 0x56: // FLV
		return "video/x-flv"
	case data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0xBA: // MPEG
		return "video/mpeg"
	default:
		return "video/mp4"
	}
}

// isValidVideoMimeType validates if the MIME type is supported for videos
func isValidVideoMimeType(mimeType string) bool {
	switch mimeType {
	case "video/mp4", "video/mpeg", "video/webm", "video/quicktime", "video/x-msvideo", "video/x-flv":
		return true
	default:
		return false
	}
}
