package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/http/dto"
	messageUC "wazmeow/internal/usecases/message"
	sessionUC "wazmeow/internal/usecases/session"
	whatsappUC "wazmeow/internal/usecases/whatsapp"
	"wazmeow/pkg/errors"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// MessageHandler handles message-sending HTTP requests for a session.
type MessageHandler struct {
	resolveUC *sessionUC.ResolveUseCase

	sendTextUC     *whatsappUC.SendMessageUseCase
	sendImageUC    *messageUC.SendImageMessageUseCase
	sendAudioUC    *messageUC.SendAudioMessageUseCase
	sendVideoUC    *messageUC.SendVideoMessageUseCase
	sendDocumentUC *messageUC.SendDocumentMessageUseCase

	logger    logger.Logger
	validator validator.Validator
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	resolveUC *sessionUC.ResolveUseCase,
	sendTextUC *whatsappUC.SendMessageUseCase,
	sendImageUC *messageUC.SendImageMessageUseCase,
	sendAudioUC *messageUC.SendAudioMessageUseCase,
	sendVideoUC *messageUC.SendVideoMessageUseCase,
	sendDocumentUC *messageUC.SendDocumentMessageUseCase,
	logger logger.Logger,
	validator validator.Validator,
) *MessageHandler {
	return &MessageHandler{
		resolveUC:      resolveUC,
		sendTextUC:     sendTextUC,
		sendImageUC:    sendImageUC,
		sendAudioUC:    sendAudioUC,
		sendVideoUC:    sendVideoUC,
		sendDocumentUC: sendDocumentUC,
		logger:         logger,
		validator:      validator,
	}
}

// SendText handles POST /sessions/{id}/send/text
// @Summary Enviar mensagem de texto
// @Description Envia uma mensagem de texto através da sessão informada.
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão ou user ID"
// @Param request body dto.SendTextMessageRequest true "Dados da mensagem"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id}/send/text [post]
func (h *MessageHandler) SendText(w http.ResponseWriter, r *http.Request) {
	var req dto.SendTextMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	result, err := h.sendTextUC.Execute(r.Context(), whatsappUC.SendMessageRequest{
		SessionID: sess.ID(),
		To:        req.To,
		Message:   req.Message,
		Mentions:  req.Mentions,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Message sent", &dto.SendMessageResponse{
		SessionID: result.SessionID.String(),
		To:        result.To,
		Success:   result.Success,
		MessageID: result.MessageID,
	})
}

// SendImage handles POST /sessions/{id}/send/image
// @Summary Enviar imagem
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão ou user ID"
// @Param request body dto.SendImageMessageRequest true "Dados da imagem"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Security ApiKeyAuth
// @Router /sessions/{id}/send/image [post]
func (h *MessageHandler) SendImage(w http.ResponseWriter, r *http.Request) {
	var req dto.SendImageMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	result, err := h.sendImageUC.Execute(r.Context(), messageUC.SendImageMessageRequest{
		SessionID: sess.ID(),
		To:        req.To,
		Image:     req.Image,
		Caption:   req.Caption,
		MimeType:  req.MimeType,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Image sent", &dto.SendMessageResponse{
		SessionID: result.SessionID.String(),
		To:        result.To,
		Success:   result.Success,
		MessageID: result.MessageID,
	})
}

// SendAudio handles POST /sessions/{id}/send/audio
// @Summary Enviar áudio
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão ou user ID"
// @Param request body dto.SendAudioMessageRequest true "Dados do áudio"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Security ApiKeyAuth
// @Router /sessions/{id}/send/audio [post]
func (h *MessageHandler) SendAudio(w http.ResponseWriter, r *http.Request) {
	var req dto.SendAudioMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	result, err := h.sendAudioUC.Execute(r.Context(), messageUC.SendAudioMessageRequest{
		SessionID: sess.ID(),
		To:        req.To,
		Audio:     req.Audio,
		MimeType:  req.MimeType,
		IsPTT:     req.IsPTT,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Audio sent", &dto.SendMessageResponse{
		SessionID: result.SessionID.String(),
		To:        result.To,
		Success:   result.Success,
		MessageID: result.MessageID,
	})
}

// SendVideo handles POST /sessions/{id}/send/video
// @Summary Enviar vídeo
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão ou user ID"
// @Param request body dto.SendVideoMessageRequest true "Dados do vídeo"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Security ApiKeyAuth
// @Router /sessions/{id}/send/video [post]
func (h *MessageHandler) SendVideo(w http.ResponseWriter, r *http.Request) {
	var req dto.SendVideoMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	result, err := h.sendVideoUC.Execute(r.Context(), messageUC.SendVideoMessageRequest{
		SessionID: sess.ID(),
		To:        req.To,
		Video:     req.Video,
		Caption:   req.Caption,
		MimeType:  req.MimeType,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Video sent", &dto.SendMessageResponse{
		SessionID: result.SessionID.String(),
		To:        result.To,
		Success:   result.Success,
		MessageID: result.MessageID,
	})
}

// SendDocument handles POST /sessions/{id}/send/document
// @Summary Enviar documento
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão ou user ID"
// @Param request body dto.SendDocumentMessageRequest true "Dados do documento"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Security ApiKeyAuth
// @Router /sessions/{id}/send/document [post]
func (h *MessageHandler) SendDocument(w http.ResponseWriter, r *http.Request) {
	var req dto.SendDocumentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	result, err := h.sendDocumentUC.Execute(r.Context(), messageUC.SendDocumentMessageRequest{
		SessionID: sess.ID(),
		To:        req.To,
		Document:  req.Document,
		Filename:  req.Filename,
		MimeType:  req.MimeType,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Document sent", &dto.SendMessageResponse{
		SessionID: result.SessionID.String(),
		To:        result.To,
		Success:   result.Success,
		MessageID: result.MessageID,
	})
}

// resolveSession resolves the {id} path parameter into a session, writing
// the error response itself when resolution fails.
func (h *MessageHandler) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	identifier := chi.URLParam(r, "id")
	if identifier == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Session identifier is required", nil)
		return nil, false
	}

	result, err := h.resolveUC.Execute(r.Context(), sessionUC.ResolveRequest{Identifier: identifier})
	if err != nil {
		h.handleUseCaseError(w, err)
		return nil, false
	}

	return result.Session, true
}

func (h *MessageHandler) writeSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dto.NewSuccessResponse(message, data))
}

func (h *MessageHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var details string
	if err != nil {
		details = err.Error()
	}
	json.NewEncoder(w).Encode(dto.NewErrorResponse(message, "", details))
}

func (h *MessageHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		h.writeErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, err)
		return
	}

	switch err {
	case session.ErrSessionNotFound:
		h.writeErrorResponse(w, http.StatusNotFound, "Session not found", err)
	case session.ErrSessionNotConnected:
		h.writeErrorResponse(w, http.StatusConflict, "Session is not connected", err)
	default:
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
