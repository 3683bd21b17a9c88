package whatsapp

import (
	"context"
	"regexp"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// PairPhoneUseCase handles phone number pairing for WhatsApp authentication
type PairPhoneUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
	validator   validator.Validator
}

// NewPairPhoneUseCase creates a new pair phone use case
func NewPairPhoneUseCase(sessionRepo session.Repository, sessionMgr whatsapp.SessionManager, logger logger.Logger, validator validator.Validator) *PairPhoneUseCase {
	return &PairPhoneUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
		validator:   validator,
	}
}

// PairPhoneRequest represents the request to pair with a phone number
type PairPhoneRequest struct {
	SessionID   session.SessionID `json:"session_id"`
	PhoneNumber string            `json:"phone_number" validate:"required"`
}

// PairPhoneResponse represents the response from pairing with a phone number
type PairPhoneResponse struct {
	SessionID   session.SessionID `json:"session_id"`
	PhoneNumber string            `json:"phone_number"`
	Message     string            `json:"message"`
	Success     bool              `json:"success"`
}

// Execute pairs a session with a phone number, requesting whatsmeow's
// pairing-code flow instead of a QR scan.
func (uc *PairPhoneUseCase) Execute(ctx context.Context, req PairPhoneRequest) (*PairPhoneResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for pair phone", err, logger.Fields{
			"session_id":   req.SessionID.String(),
			"phone_number": req.PhoneNumber,
		})
		return nil, err
	}

	phone, err := session.NewPhoneNumber(req.PhoneNumber)
	if err != nil {
		uc.logger.WarnWithFields("invalid phone number format", logger.Fields{
			"session_id":   req.SessionID.String(),
			"phone_number": req.PhoneNumber,
		})
		return nil, err
	}

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
		return &PairPhoneResponse{
			SessionID:   sess.ID(),
			PhoneNumber: phone.String(),
			Message:     "Session already authenticated",
			Success:     true,
		}, nil
	}

	sess.SetPhoneNumber(phone.String())
	if err := uc.sessionRepo.Update(ctx, sess); err != nil {
		uc.logger.ErrorWithError("failed to persist phone number", err, logger.Fields{
			"session_id": sess.ID().String(),
		})
		return nil, err
	}

	if _, err := uc.sessionMgr.CreateSession(ctx, sess.UserID(), phone.String(), whatsapp.Callbacks{}, false, sess.Source(), true); err != nil {
		uc.logger.ErrorWithError("failed to request pairing code", err, logger.Fields{
			"session_id":   sess.ID().String(),
			"phone_number": phone.String(),
		})
		return &PairPhoneResponse{
			SessionID:   sess.ID(),
			PhoneNumber: phone.String(),
			Message:     "Failed to pair with phone number",
			Success:     false,
		}, err
	}

	uc.logger.InfoWithFields("phone pairing initiated successfully", logger.Fields{
		"session_id":   sess.ID().String(),
		"phone_number": phone.String(),
	})

	return &PairPhoneResponse{
		SessionID:   sess.ID(),
		PhoneNumber: phone.String(),
		Message:     "Pairing code requested. Check your WhatsApp mobile app for the pairing code.",
		Success:     true,
	}, nil
}

// ValidatePhoneRequest represents the request to validate a phone number
type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// ValidatePhoneResponse represents the response from validating a phone number
type ValidatePhoneResponse struct {
	PhoneNumber string `json:"phone_number"`
	IsValid     bool   `json:"is_valid"`
	Message     string `json:"message"`
}

// ExecuteValidatePhone validates a phone number format
func (uc *PairPhoneUseCase) ExecuteValidatePhone(ctx context.Context, req ValidatePhoneRequest) (*ValidatePhoneResponse, error) {
	_, err := session.NewPhoneNumber(req.PhoneNumber)
	isValid := err == nil

	response := &ValidatePhoneResponse{
		PhoneNumber: req.PhoneNumber,
		IsValid:     isValid,
	}

	if isValid {
		response.Message = "Phone number format is valid"
	} else {
		response.Message = "Phone number format is invalid. Must be 6-15 digits, optionally prefixed with +"
	}

	uc.logger.InfoWithFields("phone number validation completed", logger.Fields{
		"phone_number": req.PhoneNumber,
		"is_valid":     isValid,
	})

	return response, nil
}

// FormatPhoneRequest represents the request to format a phone number
type FormatPhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	CountryCode string `json:"country_code,omitempty"`
}

// FormatPhoneResponse represents the response from formatting a phone number
type FormatPhoneResponse struct {
	OriginalNumber  string `json:"original_number"`
	FormattedNumber string `json:"formatted_number"`
	IsValid         bool   `json:"is_valid"`
	Message         string `json:"message"`
}

// ExecuteFormatPhone formats a phone number to international format
func (uc *PairPhoneUseCase) ExecuteFormatPhone(ctx context.Context, req FormatPhoneRequest) (*FormatPhoneResponse, error) {
	originalNumber := req.PhoneNumber
	formattedNumber := formatPhoneNumber(req.PhoneNumber, req.CountryCode)
	_, err := session.NewPhoneNumber(formattedNumber)
	isValid := err == nil

	response := &FormatPhoneResponse{
		OriginalNumber:  originalNumber,
		FormattedNumber: formattedNumber,
		IsValid:         isValid,
	}

	if isValid {
		response.Message = "Phone number formatted successfully"
	} else {
		response.Message = "Unable to format phone number to valid international format"
	}

	uc.logger.InfoWithFields("phone number formatting completed", logger.Fields{
		"original_number":  originalNumber,
		"formatted_number": formattedNumber,
		"country_code":     req.CountryCode,
		"is_valid":         isValid,
	})

	return response, nil
}

// formatPhoneNumber formats a phone number to international format
func formatPhoneNumber(phoneNumber, countryCode string) string {
	phoneRegex := regexp.MustCompile(`[^\d+]`)
	cleaned := phoneRegex.ReplaceAllString(phoneNumber, "")

	if len(cleaned) > 0 && cleaned[0] == '+' {
		return cleaned
	}

	if len(cleaned) >= 2 && cleaned[:2] == "00" {
		return "+" + cleaned[2:]
	}

	if countryCode != "" {
		countryCode = regexp.MustCompile(`[^\d]`).ReplaceAllString(countryCode, "")

		if len(cleaned) > 0 && cleaned[0] == '0' {
			cleaned = cleaned[1:]
		}

		return "+" + countryCode + cleaned
	}

	if len(cleaned) > 0 && cleaned[0] != '+' {
		return "+" + cleaned
	}

	return cleaned
}
