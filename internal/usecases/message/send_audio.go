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

// SendAudioMessageUseCase handles sending WhatsApp audio messages
type SendAudioMessageUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewSendAudioMessageUseCase creates a new send audio message use case
func NewSendAudioMessageUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *SendAudioMessageUseCase {
	return &SendAudioMessageUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// SendAudioMessageRequest represents the request to send an audio message
type SendAudioMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to" validate:"required"`
	Audio     string            `json:"audio" validate:"required"` // Base64 string
	MimeType  string            `json:"mime_type"`
	IsPTT     bool              `json:"is_ptt"` // Push-to-talk
}

// SendAudioMessageResponse represents the response from sending an audio message
type SendAudioMessageResponse struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to"`
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const maxAudioSize = 16 * 1024 * 1024 // 16MB

// Execute sends an audio message via WhatsApp
func (uc *SendAudioMessageUseCase) Execute(ctx context.Context, req SendAudioMessageRequest) (*SendAudioMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for send audio message", err, logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
		})
		return nil, err
	}

	if strings.TrimSpace(req.Audio) == "" {
		return nil, fmt.Errorf("audio data must not be empty")
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

	audioData, err := decodeBase64Payload(req.Audio)
	if err != nil {
		return &SendAudioMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = detectAudioMimeType(audioData)
	}
	if !isValidAudioMimeType(mimeType) {
		err := fmt.Errorf("unsupported audio type: %s", mimeType)
		return &SendAudioMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}
	if len(audioData) > maxAudioSize {
		err := fmt.Errorf("audio too large: %d bytes (max: %d bytes)", len(audioData), maxAudioSize)
		return &SendAudioMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	formattedTo := utils.FormatWhatsAppJID(req.To)

	content := whatsapp.MessageContent{
		Extra: map[string]interface{}{
			"media_type": "audio",
			"mime_type":  mimeType,
			"data":       audioData,
			"is_ptt":     req.IsPTT,
		},
	}

	result, err := socket.SendMessage(ctx, formattedTo, content, whatsapp.SendOptions{})
	if err != nil {
		uc.logger.ErrorWithError("failed to send WhatsApp audio message", err, logger.Fields{
			"session_id": sess.ID().String(),
			"to":         formattedTo,
			"mime_type":  mimeType,
			"is_ptt":     req.IsPTT,
		})
		return &SendAudioMessageResponse{SessionID: sess.ID(), To: req.To, Error: err.Error()}, err
	}

	uc.logger.InfoWithFields("WhatsApp audio message sent successfully", logger.Fields{
		"session_id": sess.ID().String(),
		"to":         formattedTo,
		"mime_type":  mimeType,
		"audio_size": len(audioData),
		"is_ptt":     req.IsPTT,
	})

	return &SendAudioMessageResponse{
		SessionID: sess.ID(),
		To:        req.To,
		Success:   true,
		MessageID: result.MessageID,
	}, nil
}

// detectAudioMimeType detects MIME type based on magic bytes
func detectAudioMimeType(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}

	switch {
	case data[0] == 0xFF && (data[1]&0xE0) == 0xE0: // MP3
		return "audio/mpeg"
	case data[0] == 0x4F && data[1] == 0x67 && data[2] == 0x67 && data[3] == 0x53: // OGG
		return "audio/ogg"
	case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46: // WAV
		return "audio/wav"
	case data[0] == 0x66 && data[1] == 0x4C && data[2] == 0x61 && data[3] == 0x43: // FLAC
		return "audio/flac"
	default:
		return "audio/mpeg"
	}
}

// isValidAudioMimeType validates if the MIME type is supported for audio
func isValidAudioMimeType(mimeType string) bool {
	switch mimeType {
	case "audio/mpeg", "audio/mp3", "audio/ogg", "audio/wav", "audio/flac", "audio/aac", "audio/m4a":
		return true
	default:
		return false
	}
}
