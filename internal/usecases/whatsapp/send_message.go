package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// SendMessageUseCase handles sending WhatsApp messages
type SendMessageUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewSendMessageUseCase creates a new send message use case
func NewSendMessageUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *SendMessageUseCase {
	return &SendMessageUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// SendMessageRequest represents the request to send a message
type SendMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to" validate:"required"`
	Message   string            `json:"message" validate:"required,max=4096"`
	Mentions  []string          `json:"mentions,omitempty"`
}

// SendMessageResponse represents the response from sending a message
type SendMessageResponse struct {
	SessionID session.SessionID `json:"session_id"`
	To        string            `json:"to"`
	Message   string            `json:"message"`
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
}

// Execute sends a WhatsApp message
func (uc *SendMessageUseCase) Execute(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for send message", err, logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
		})
		return nil, err
	}

	if strings.TrimSpace(req.Message) == "" {
		uc.logger.WarnWithFields("empty message content", logger.Fields{
			"session_id": req.SessionID.String(),
			"to":         req.To,
		})
		return nil, fmt.Errorf("message content must not be empty")
	}

	sess, err := uc.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get session", err, logger.Fields{
			"session_id": req.SessionID.String(),
		})
		return nil, err
	}

	if !sess.IsConnected() {
		uc.logger.WarnWithFields("session not connected", logger.Fields{
			"session_id": sess.ID().String(),
			"status":     sess.Status().String(),
		})
		return nil, session.ErrSessionNotConnected
	}

	socket, ok := uc.sessionMgr.GetSession(sess.ID())
	if !ok {
		uc.logger.ErrorWithError("whatsapp socket not found", whatsapp.ErrClientNotFound, logger.Fields{
			"session_id": sess.ID().String(),
		})
		return nil, whatsapp.ErrClientNotFound
	}

	formattedTo := formatRecipient(req.To)

	result, err := socket.SendText(ctx, formattedTo, req.Message, req.Mentions)
	if err != nil {
		uc.logger.ErrorWithError("failed to send WhatsApp message", err, logger.Fields{
			"session_id": sess.ID().String(),
			"to":         formattedTo,
			"message":    truncateMessage(req.Message, 100),
		})
		return &SendMessageResponse{
			SessionID: sess.ID(),
			To:        req.To,
			Message:   req.Message,
			Success:   false,
		}, err
	}

	sess.TouchLastMessage()
	_ = uc.sessionRepo.Update(ctx, sess)

	uc.logger.InfoWithFields("WhatsApp message sent successfully", logger.Fields{
		"session_id":     sess.ID().String(),
		"to":             formattedTo,
		"message_length": len(req.Message),
		"message_id":     result.MessageID,
	})

	return &SendMessageResponse{
		SessionID: sess.ID(),
		To:        req.To,
		Message:   req.Message,
		Success:   true,
		MessageID: result.MessageID,
	}, nil
}

// SendBulkMessageRequest represents the request to send messages to multiple recipients
type SendBulkMessageRequest struct {
	SessionID session.SessionID `json:"session_id"`
	To        []string          `json:"to" validate:"required,min=1,max=100"`
	Message   string            `json:"message" validate:"required,max=4096"`
}

// SendBulkMessageResponse represents the response from sending bulk messages
type SendBulkMessageResponse struct {
	SessionID    session.SessionID     `json:"session_id"`
	Message      string                `json:"message"`
	TotalCount   int                   `json:"total_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	Results      []SendMessageResponse `json:"results"`
	Errors       []string              `json:"errors,omitempty"`
}

// ExecuteBulk sends a message to multiple recipients
func (uc *SendMessageUseCase) ExecuteBulk(ctx context.Context, req SendBulkMessageRequest) (*SendBulkMessageResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for bulk send message", err, logger.Fields{
			"session_id":      req.SessionID.String(),
			"recipient_count": len(req.To),
		})
		return nil, err
	}

	response := &SendBulkMessageResponse{
		SessionID:  req.SessionID,
		Message:    req.Message,
		TotalCount: len(req.To),
		Results:    make([]SendMessageResponse, 0, len(req.To)),
	}

	var errs []string

	for _, recipient := range req.To {
		sendReq := SendMessageRequest{
			SessionID: req.SessionID,
			To:        recipient,
			Message:   req.Message,
		}

		result, err := uc.Execute(ctx, sendReq)
		if err != nil {
			response.FailedCount++
			errs = append(errs, fmt.Sprintf("failed to send to %s: %v", recipient, err))

			response.Results = append(response.Results, SendMessageResponse{
				SessionID: req.SessionID,
				To:        recipient,
				Message:   req.Message,
				Success:   false,
			})
		} else {
			response.SuccessCount++
			response.Results = append(response.Results, *result)
		}
	}

	response.Errors = errs

	uc.logger.InfoWithFields("bulk message sending completed", logger.Fields{
		"session_id":    req.SessionID.String(),
		"total_count":   response.TotalCount,
		"success_count": response.SuccessCount,
		"failed_count":  response.FailedCount,
	})

	return response, nil
}

// Helper functions

// formatRecipient formats a recipient number to WhatsApp JID format
func formatRecipient(recipient string) string {
	cleaned := strings.ReplaceAll(recipient, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	if !strings.Contains(cleaned, "@") {
		cleaned = strings.TrimPrefix(cleaned, "+")
		return cleaned + "@s.whatsapp.net"
	}

	return cleaned
}

// truncateMessage truncates a message for logging purposes
func truncateMessage(message string, maxLength int) string {
	if len(message) <= maxLength {
		return message
	}
	return message[:maxLength] + "..."
}
