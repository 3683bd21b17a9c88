package dto

// SendTextMessageRequest is the payload for POST /sessions/{id}/send/text.
type SendTextMessageRequest struct {
	To       string   `json:"to" validate:"required" example:"5511999999999"`
	Message  string   `json:"message" validate:"required,max=4096" example:"Olá!"`
	Mentions []string `json:"mentions,omitempty"`
}

// SendImageMessageRequest is the payload for POST /sessions/{id}/send/image.
type SendImageMessageRequest struct {
	To       string `json:"to" validate:"required"`
	Image    string `json:"image" validate:"required"` // Base64 string
	Caption  string `json:"caption,omitempty" validate:"max=1024"`
	MimeType string `json:"mime_type,omitempty"`
}

// SendAudioMessageRequest is the payload for POST /sessions/{id}/send/audio.
type SendAudioMessageRequest struct {
	To       string `json:"to" validate:"required"`
	Audio    string `json:"audio" validate:"required"` // Base64 string
	MimeType string `json:"mime_type,omitempty"`
	IsPTT    bool   `json:"is_ptt,omitempty"`
}

// SendVideoMessageRequest is the payload for POST /sessions/{id}/send/video.
type SendVideoMessageRequest struct {
	To       string `json:"to" validate:"required"`
	Video    string `json:"video" validate:"required"` // Base64 string
	Caption  string `json:"caption,omitempty" validate:"max=1024"`
	MimeType string `json:"mime_type,omitempty"`
}

// SendDocumentMessageRequest is the payload for POST /sessions/{id}/send/document.
type SendDocumentMessageRequest struct {
	To       string `json:"to" validate:"required"`
	Document string `json:"document" validate:"required"` // Base64 string
	Filename string `json:"filename" validate:"required"`
	MimeType string `json:"mime_type,omitempty"`
}

// SendMessageResponse is the common response for all send endpoints.
type SendMessageResponse struct {
	SessionID string `json:"session_id"`
	To        string `json:"to"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
}
