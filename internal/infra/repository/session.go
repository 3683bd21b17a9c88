package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/infra/database"
	"wazmeow/pkg/logger"
)

// SessionRepository implements session.Repository using Bun ORM (supports SQLite, PostgreSQL, etc.)
type SessionRepository struct {
	db     *bun.DB
	logger logger.Logger
}

// NewSessionRepository creates a new session repository using Bun ORM
func NewSessionRepository(db *bun.DB, logger logger.Logger) session.Repository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new session in the repository
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	model := database.ToWazMeowSessionModel(sess)

	_, err := r.db.NewInsert().
		Model(model).
		Exec(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to create session", err, logger.Fields{
			"session_id": sess.ID().String(),
			"user_id":    sess.UserID(),
		})
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.InfoWithFields("session created", logger.Fields{
		"session_id": sess.ID().String(),
		"user_id":    sess.UserID(),
	})

	return nil
}

// GetByID retrieves a session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id session.SessionID) (*session.Session, error) {
	var model database.WazMeowSessionModel

	err := r.db.NewSelect().
		Model(&model).
		Where("id = ?", id.String()).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, session.ErrSessionNotFound
		}
		r.logger.ErrorWithError("failed to get session by ID", err, logger.Fields{
			"session_id": id.String(),
		})
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}

	sess, err := database.FromWazMeowSessionModel(&model)
	if err != nil {
		r.logger.ErrorWithError("failed to convert session model", err, logger.Fields{
			"session_id": id.String(),
		})
		return nil, fmt.Errorf("failed to convert session model: %w", err)
	}

	return sess, nil
}

// GetByUserID retrieves a session by its owning user ID
func (r *SessionRepository) GetByUserID(ctx context.Context, userID string) (*session.Session, error) {
	var model database.WazMeowSessionModel

	err := r.db.NewSelect().
		Model(&model).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, session.ErrSessionNotFound
		}
		r.logger.ErrorWithError("failed to get session by user ID", err, logger.Fields{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get session by user ID: %w", err)
	}

	sess, err := database.FromWazMeowSessionModel(&model)
	if err != nil {
		r.logger.ErrorWithError("failed to convert session model", err, logger.Fields{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to convert session model: %w", err)
	}

	return sess, nil
}

// List retrieves sessions with pagination
func (r *SessionRepository) List(ctx context.Context, limit, offset int) ([]*session.Session, int, error) {
	var models []database.WazMeowSessionModel

	err := r.db.NewSelect().
		Model(&models).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to list sessions", err, logger.Fields{
			"limit":  limit,
			"offset": offset,
		})
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	total, err := r.db.NewSelect().
		Model((*database.WazMeowSessionModel)(nil)).
		Count(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to count sessions", err, nil)
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	sessions := make([]*session.Session, 0, len(models))
	for i := range models {
		sess, err := database.FromWazMeowSessionModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert session model", err, logger.Fields{
				"session_id": models[i].ID,
			})
			continue
		}
		sessions = append(sessions, sess)
	}

	return sessions, total, nil
}

// Update updates an existing session
func (r *SessionRepository) Update(ctx context.Context, sess *session.Session) error {
	model := database.ToWazMeowSessionModel(sess)

	result, err := r.db.NewUpdate().
		Model(model).
		Where("id = ?", sess.ID().String()).
		Exec(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to update session", err, logger.Fields{
			"session_id": sess.ID().String(),
		})
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return session.ErrSessionNotFound
	}

	r.logger.InfoWithFields("session updated", logger.Fields{
		"session_id": sess.ID().String(),
		"status":     sess.Status().String(),
	})

	return nil
}

// Delete removes a session from the repository
func (r *SessionRepository) Delete(ctx context.Context, id session.SessionID) error {
	result, err := r.db.NewDelete().
		Model((*database.WazMeowSessionModel)(nil)).
		Where("id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to delete session", err, logger.Fields{
			"session_id": id.String(),
		})
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return session.ErrSessionNotFound
	}

	r.logger.InfoWithFields("session deleted", logger.Fields{
		"session_id": id.String(),
	})

	return nil
}

// UpdateStatus updates only the status of a session
func (r *SessionRepository) UpdateStatus(ctx context.Context, id session.SessionID, status session.Status) error {
	result, err := r.db.NewUpdate().
		Model((*database.WazMeowSessionModel)(nil)).
		Set("status = ?", status.String()).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to update session status", err, logger.Fields{
			"session_id": id.String(),
			"status":     status.String(),
		})
		return fmt.Errorf("failed to update session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return session.ErrSessionNotFound
	}

	r.logger.InfoWithFields("session status updated", logger.Fields{
		"session_id": id.String(),
		"status":     status.String(),
	})

	return nil
}

// GetActiveCount returns the number of connected sessions
func (r *SessionRepository) GetActiveCount(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.WazMeowSessionModel)(nil)).
		Where("status = ?", session.StatusConnected.String()).
		Count(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to get active session count", err, nil)
		return 0, fmt.Errorf("failed to get active session count: %w", err)
	}

	return count, nil
}

// GetByStatus retrieves sessions by their status
func (r *SessionRepository) GetByStatus(ctx context.Context, status session.Status, limit, offset int) ([]*session.Session, int, error) {
	var models []database.WazMeowSessionModel

	err := r.db.NewSelect().
		Model(&models).
		Where("status = ?", status.String()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to get sessions by status", err, logger.Fields{
			"status": status.String(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, 0, fmt.Errorf("failed to get sessions by status: %w", err)
	}

	total, err := r.db.NewSelect().
		Model((*database.WazMeowSessionModel)(nil)).
		Where("status = ?", status.String()).
		Count(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to count sessions by status", err, logger.Fields{
			"status": status.String(),
		})
		return nil, 0, fmt.Errorf("failed to count sessions by status: %w", err)
	}

	sessions := make([]*session.Session, 0, len(models))
	for i := range models {
		sess, err := database.FromWazMeowSessionModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert session model", err, logger.Fields{
				"session_id": models[i].ID,
			})
			continue
		}
		sessions = append(sessions, sess)
	}

	return sessions, total, nil
}

// Exists checks if a session with the given ID exists
func (r *SessionRepository) Exists(ctx context.Context, id session.SessionID) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.WazMeowSessionModel)(nil)).
		Where("id = ?", id.String()).
		Count(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to check session existence", err, logger.Fields{
			"session_id": id.String(),
		})
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return count > 0, nil
}

// ListEligibleForReconnect returns sessions that previously held a WhatsApp
// JID and were not voluntarily disconnected, for reconnection on startup.
func (r *SessionRepository) ListEligibleForReconnect(ctx context.Context) ([]*session.Session, error) {
	var models []database.WazMeowSessionModel

	err := r.db.NewSelect().
		Model(&models).
		Where("wa_jid != ?", "").
		Where("voluntarily_disconnected = ?", false).
		Scan(ctx)

	if err != nil {
		r.logger.ErrorWithError("failed to list sessions eligible for reconnect", err, nil)
		return nil, fmt.Errorf("failed to list sessions eligible for reconnect: %w", err)
	}

	sessions := make([]*session.Session, 0, len(models))
	for i := range models {
		sess, err := database.FromWazMeowSessionModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert session model", err, logger.Fields{
				"session_id": models[i].ID,
			})
			continue
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}
