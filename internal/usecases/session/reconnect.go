package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/pkg/logger"
)

// AutoReconnectUseCase handles automatic reconnection of sessions during startup
type AutoReconnectUseCase struct {
	sessionRepo session.Repository
	sessionMgr  whatsapp.SessionManager
	logger      logger.Logger
}

// NewAutoReconnectUseCase creates a new auto reconnect use case
func NewAutoReconnectUseCase(
	sessionRepo session.Repository,
	sessionMgr whatsapp.SessionManager,
	logger logger.Logger,
) *AutoReconnectUseCase {
	return &AutoReconnectUseCase{
		sessionRepo: sessionRepo,
		sessionMgr:  sessionMgr,
		logger:      logger,
	}
}

// AutoReconnectRequest represents the request for auto reconnection
type AutoReconnectRequest struct {
	MaxConcurrentReconnections int
	ReconnectionTimeout        time.Duration
}

// AutoReconnectResponse represents the response from auto reconnection
type AutoReconnectResponse struct {
	TotalSessions           int
	SuccessfulReconnections int
	FailedReconnections     int
	ReconnectionResults     []SessionReconnectionResult
}

// SessionReconnectionResult represents the result of a single session reconnection
type SessionReconnectionResult struct {
	SessionID session.SessionID
	UserID    string
	Success   bool
	Error     string
	Duration  time.Duration
}

// Execute performs the startup reconnect sweep over eligible sessions.
func (uc *AutoReconnectUseCase) Execute(ctx context.Context, req AutoReconnectRequest) (*AutoReconnectResponse, error) {
	startTime := time.Now()

	uc.logger.Info("starting automatic session reconnection process")

	if req.MaxConcurrentReconnections <= 0 {
		req.MaxConcurrentReconnections = 5
	}
	if req.ReconnectionTimeout <= 0 {
		req.ReconnectionTimeout = 30 * time.Second
	}

	eligible, err := uc.sessionRepo.ListEligibleForReconnect(ctx)
	if err != nil {
		uc.logger.ErrorWithError("failed to find eligible sessions for reconnection", err, nil)
		return nil, fmt.Errorf("failed to find eligible sessions: %w", err)
	}

	total := len(eligible)
	uc.logger.InfoWithFields("found eligible sessions for reconnection", logger.Fields{
		"total_sessions": total,
	})

	if total == 0 {
		uc.logger.Info("no sessions eligible for reconnection")
		return &AutoReconnectResponse{ReconnectionResults: []SessionReconnectionResult{}}, nil
	}

	results := uc.performReconnections(ctx, eligible, req.MaxConcurrentReconnections, req.ReconnectionTimeout)

	successCount, failedCount := 0, 0
	for _, result := range results {
		if result.Success {
			successCount++
		} else {
			failedCount++
		}
	}

	uc.logger.InfoWithFields("automatic reconnection process completed", logger.Fields{
		"total_sessions":           total,
		"successful_reconnections": successCount,
		"failed_reconnections":     failedCount,
		"duration_ms":              time.Since(startTime).Milliseconds(),
	})

	return &AutoReconnectResponse{
		TotalSessions:           total,
		SuccessfulReconnections: successCount,
		FailedReconnections:     failedCount,
		ReconnectionResults:     results,
	}, nil
}

func (uc *AutoReconnectUseCase) performReconnections(
	ctx context.Context,
	sessions []*session.Session,
	maxConcurrent int,
	timeout time.Duration,
) []SessionReconnectionResult {
	results := make([]SessionReconnectionResult, len(sessions))

	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, sess := range sessions {
		wg.Add(1)
		go func(index int, sess *session.Session) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[index] = uc.reconnectSession(ctx, sess, timeout)
		}(i, sess)
	}

	wg.Wait()
	return results
}

func (uc *AutoReconnectUseCase) reconnectSession(
	ctx context.Context,
	sess *session.Session,
	timeout time.Duration,
) SessionReconnectionResult {
	startTime := time.Now()
	sessionID := sess.ID()

	uc.logger.InfoWithFields("attempting to reconnect session", logger.Fields{
		"session_id": sessionID.String(),
		"wa_jid":     sess.WaJID(),
	})

	reconnectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := uc.sessionMgr.CreateSession(reconnectCtx, sess.UserID(), sess.PhoneNumber(), whatsapp.Callbacks{}, true, sess.Source(), false)
	if err != nil {
		errorMsg := fmt.Sprintf("failed to reconnect whatsapp session: %v", err)
		uc.logger.ErrorWithError("session reconnection failed", err, logger.Fields{
			"session_id": sessionID.String(),
		})

		sess.Disconnect()
		uc.sessionRepo.Update(ctx, sess)

		return SessionReconnectionResult{
			SessionID: sessionID,
			UserID:    sess.UserID(),
			Success:   false,
			Error:     errorMsg,
			Duration:  time.Since(startTime),
		}
	}

	uc.logger.InfoWithFields("session reconnected successfully", logger.Fields{
		"session_id":  sessionID.String(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return SessionReconnectionResult{
		SessionID: sessionID,
		UserID:    sess.UserID(),
		Success:   true,
		Duration:  time.Since(startTime),
	}
}
