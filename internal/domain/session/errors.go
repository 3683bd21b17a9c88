package session

import (
	"errors"
	"fmt"
)

// Domain errors for session operations.
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyExists    = errors.New("session already exists")
	ErrSessionAlreadyConnected = errors.New("session already connected")
	ErrSessionNotConnected     = errors.New("session not connected")
	ErrSessionInvalidState     = errors.New("session in invalid state")

	ErrInvalidSessionID = errors.New("invalid session ID")
	ErrEmptySessionID   = errors.New("session ID cannot be empty")

	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	ErrInvalidWhatsAppJID = errors.New("invalid WhatsApp JID")
	ErrEmptyWhatsAppJID   = errors.New("WhatsApp JID cannot be empty")

	ErrInvalidProxyURL        = errors.New("invalid proxy URL")
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme")
	ErrInvalidProxyHost       = errors.New("invalid proxy host")

	ErrInvalidStatus = errors.New("invalid session status")
	ErrInvalidSource = errors.New("invalid session source")

	ErrRepositoryConnection = errors.New("repository connection error")
	ErrRepositoryTimeout    = errors.New("repository operation timeout")
	ErrRepositoryConstraint = errors.New("repository constraint violation")

	ErrValidationFailed = errors.New("validation failed")
)

// Error codes for different types of session errors.
const (
	ErrCodeNotFound         = "SESSION_NOT_FOUND"
	ErrCodeAlreadyExists    = "SESSION_ALREADY_EXISTS"
	ErrCodeAlreadyConnected = "SESSION_ALREADY_CONNECTED"
	ErrCodeNotConnected     = "SESSION_NOT_CONNECTED"
	ErrCodeInvalidState     = "SESSION_INVALID_STATE"
	ErrCodeInvalidID        = "INVALID_SESSION_ID"
	ErrCodeInvalidPhone     = "INVALID_PHONE_NUMBER"
	ErrCodeInvalidJID       = "INVALID_WHATSAPP_JID"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeRepository       = "REPOSITORY_ERROR"
)

// Error represents a domain-specific error with additional context.
type Error struct {
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorWithCause creates a new Error with a cause.
func NewErrorWithCause(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewNotFoundError creates a session-not-found error.
func NewNotFoundError(sessionID SessionID) *Error {
	return NewError(ErrCodeNotFound, "session not found").
		WithContext("session_id", sessionID.String())
}

// NewAlreadyExistsError creates a session-already-exists error.
func NewAlreadyExistsError(sessionID SessionID) *Error {
	return NewError(ErrCodeAlreadyExists, "session already exists").
		WithContext("session_id", sessionID.String())
}

// NewRepositoryError creates a repository error.
func NewRepositoryError(operation string, cause error) *Error {
	return NewErrorWithCause(ErrCodeRepository, fmt.Sprintf("repository operation failed: %s", operation), cause).
		WithContext("operation", operation)
}

// IsNotFoundError checks if the error is a not-found error.
func IsNotFoundError(err error) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrCodeNotFound
	}
	return errors.Is(err, ErrSessionNotFound)
}

// IsAlreadyExistsError checks if the error is an already-exists error.
func IsAlreadyExistsError(err error) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrCodeAlreadyExists
	}
	return errors.Is(err, ErrSessionAlreadyExists)
}
