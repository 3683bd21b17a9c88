package session

import (
	"context"
	"fmt"

	"wazmeow/internal/domain/session"
	"wazmeow/pkg/logger"
)

// ResolveUseCase handles resolving a session by either its session ID or
// the user ID that owns it, so callers can address a session without
// tracking which form they were given.
type ResolveUseCase struct {
	repo   session.Repository
	logger logger.Logger
}

// NewResolveUseCase creates a new resolve use case
func NewResolveUseCase(repo session.Repository, logger logger.Logger) *ResolveUseCase {
	return &ResolveUseCase{
		repo:   repo,
		logger: logger,
	}
}

// ResolveRequest represents the request to resolve a session
type ResolveRequest struct {
	Identifier string `json:"identifier"`
}

// ResolveResponse represents the response from resolving a session
type ResolveResponse struct {
	Session        *session.Session `json:"session"`
	IdentifierType string           `json:"identifier_type"`
}

// Execute resolves a session by session ID first, falling back to user ID.
func (uc *ResolveUseCase) Execute(ctx context.Context, req ResolveRequest) (*ResolveResponse, error) {
	if req.Identifier == "" {
		return nil, fmt.Errorf("identifier must not be empty")
	}

	if sessionID, err := session.SessionIDFromString(req.Identifier); err == nil {
		sess, err := uc.repo.GetByID(ctx, sessionID)
		if err == nil {
			uc.logger.InfoWithFields("session resolved by session id", logger.Fields{
				"session_id": sess.ID().String(),
			})
			return &ResolveResponse{Session: sess, IdentifierType: "session_id"}, nil
		}
		if err != session.ErrSessionNotFound {
			uc.logger.ErrorWithError("failed to get session by id", err, logger.Fields{
				"identifier": req.Identifier,
			})
			return nil, err
		}
	}

	sess, err := uc.repo.GetByUserID(ctx, req.Identifier)
	if err != nil {
		if err == session.ErrSessionNotFound {
			uc.logger.WarnWithFields("session not found", logger.Fields{
				"identifier": req.Identifier,
			})
			return nil, fmt.Errorf("session for '%s' not found", req.Identifier)
		}
		uc.logger.ErrorWithError("failed to get session by user id", err, logger.Fields{
			"identifier": req.Identifier,
		})
		return nil, err
	}

	uc.logger.InfoWithFields("session resolved by user id", logger.Fields{
		"session_id": sess.ID().String(),
		"user_id":    req.Identifier,
	})

	return &ResolveResponse{Session: sess, IdentifierType: "user_id"}, nil
}
