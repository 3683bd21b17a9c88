package session

import (
	"context"

	"wazmeow/internal/domain/session"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// CreateUseCase handles session creation
type CreateUseCase struct {
	repo      session.Repository
	logger    logger.Logger
	validator validator.Validator
}

// NewCreateUseCase creates a new create session use case
func NewCreateUseCase(repo session.Repository, logger logger.Logger, validator validator.Validator) *CreateUseCase {
	return &CreateUseCase{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// CreateRequest represents the request to create a session
type CreateRequest struct {
	UserID      string         `json:"user_id" validate:"required"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Source      session.Source `json:"source"`
}

// CreateResponse represents the response from creating a session
type CreateResponse struct {
	Session *session.Session `json:"session"`
}

// Execute creates a new session
func (uc *CreateUseCase) Execute(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for create session", err, logger.Fields{
			"user_id": req.UserID,
		})
		return nil, err
	}

	existing, err := uc.repo.GetByUserID(ctx, req.UserID)
	if err != nil && err != session.ErrSessionNotFound {
		uc.logger.ErrorWithError("failed to check existing session", err, logger.Fields{
			"user_id": req.UserID,
		})
		return nil, err
	}

	if existing != nil {
		uc.logger.WarnWithFields("session for user already exists", logger.Fields{
			"user_id":    req.UserID,
			"session_id": existing.ID().String(),
		})
		return nil, session.ErrSessionAlreadyExists
	}

	sess := session.NewSession(req.UserID, req.PhoneNumber, req.Source)

	if err := sess.Validate(); err != nil {
		uc.logger.ErrorWithError("session validation failed", err, logger.Fields{
			"user_id":    req.UserID,
			"session_id": sess.ID().String(),
		})
		return nil, err
	}

	if err := uc.repo.Create(ctx, sess); err != nil {
		uc.logger.ErrorWithError("failed to create session", err, logger.Fields{
			"user_id":    req.UserID,
			"session_id": sess.ID().String(),
		})
		return nil, err
	}

	uc.logger.InfoWithFields("session created successfully", logger.Fields{
		"user_id":    sess.UserID(),
		"session_id": sess.ID().String(),
		"status":     sess.Status().String(),
	})

	return &CreateResponse{
		Session: sess,
	}, nil
}
