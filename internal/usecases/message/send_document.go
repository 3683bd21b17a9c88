package message

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/shared/utils"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// SendDocumentMessageUseCase handles sending WhatsApp document messages
type SendDocumentMessageUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewSendDocumentMessageUseCase creates a new send document message use case
func NewSendDocumentMessageUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *SendDocumentMessageUseCase {
	return &SendDocumentMessageUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// SendDocumentMessageRequest represents the request to send a document message
type SendDocumentMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to" validate:"required"`
	Document  string            `json:"document" validate:"required"` // Base64 string
	Filename  string            `json:"filename" validate:"required"`
	MimeType  string            `json:"mime_type"`
}

// SendDocumentMessageResponse represents the response from sending a document message
type SendDocumentMessageResponse struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to"`
	Filename  string            `json:"filename"`
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const maxDocumentSize = 100 * 1024 * 1024 // 100MB

// Execute sends a document message via WhatsApp
func (uc *SendDocumentMessageUseCase) Execute(ctx context.Context, req SendDocumentMessageRequest) (*SendDocumentMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for send document message", err, logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
			"filename":   req.Filename,
		})
		return nil, err
	}

	if strings.TrimSpace(req.Document) == "" {
		return nil, fmt.Errorf("document data must not be empty")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, fmt.Errorf("filename is required")
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

	documentData, err := decodeBase64Payload(req.Document)
	if err != nil {
		return &SendDocumentMessageResponse{SessionID: sess.ID(), To: req.To, Filename: req.Filename, Error: err.Error()}, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = detectDocumentMimeType(documentData, req.Filename)
	}
	if !isValidDocumentMimeType(mimeType) {
		err := fmt.Errorf("unsupported document type: %s", mimeType)
		return &SendDocumentMessageResponse{SessionID: sess.ID(), To: req.To, Filename: req.Filename, Error: err.Error()}, err
	}
	if len(documentData) > maxDocumentSize {
		err := fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(documentData), maxDocumentSize)
		return &SendDocumentMessageResponse{SessionID: sess.ID(), To: req.To, Filename: req.Filename, Error: err.Error()}, err
	}

	formattedTo := utils.FormatWhatsAppJID(req.To)

	content := whatsapp.MessageContent{
		Extra: map[string]interface{}{
			"media_type": "document",
			"mime_type":  mimeType,
			"data":       documentData,
			"filename":   req.Filename,
		},
	}

	result, err := socket.SendMessage(ctx, formattedTo, content, whatsapp.SendOptions{})
	if err != nil {
		uc.logger.ErrorWithError("failed to send WhatsApp document message", err, logger.Fields{
			"session_id": sess.ID().String(),
			"to":         formattedTo,
			"filename":   req.Filename,
			"mime_type":  mimeType,
		})
		return &SendDocumentMessageResponse{SessionID: sess.ID(), To: req.To, Filename: req.Filename, Error: err.Error()}, err
	}

	uc.logger.InfoWithFields("WhatsApp document message sent successfully", logger.Fields{
		"session_id":    sess.ID().String(),
		"to":            formattedTo,
		"filename":      req.Filename,
		"mime_type":     mimeType,
		"document_size": len(documentData),
	})

	return &SendDocumentMessageResponse{
		SessionID: sess.ID(),
		To:        req.To,
		Filename:  req.Filename,
		Success:   true,
		MessageID: result.MessageID,
	}, nil
}

// detectDocumentMimeType detects MIME type based on file extension and magic bytes
func detectDocumentMimeType(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".txt":
		return "text/plain"
	case ".zip":
		return "application/zip"
	case ".rar":
		return "application/x-rar-compressed"
	case ".7z":
		return "application/x-7z-compressed"
	}

	if len(data) >= 4 {
		switch {
		case data[0] == 0x25 && data[1] == 0x50 && data[2] == 0x44 && data[3] == 0x46: // PDF
			return "application/pdf"
		case data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04: // ZIP/Office
			return "application/zip"
		case data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0: // MS Office
			return "application/msword"
		}
	}

	return "application/octet-stream"
}

// isValidDocumentMimeType validates if the MIME type is supported for documents
func isValidDocumentMimeType(mimeType string) bool {
	switch mimeType {
	case "application/x-executable", "application/x-msdownload", "application/x-dosexec":
		return false
	default:
		return true
	}
}
