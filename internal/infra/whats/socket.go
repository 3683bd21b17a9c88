package whats

import (
	"context"
	"time"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/infra/ratebucket"
)

const (
	sendTimeout    = 40 * time.Second
	sendClass      = "send"
	retryBackoff1  = 1 * time.Second
	retryBackoff2  = 2 * time.Second
	maxSendRetries = 2
)

// socket is the SessionManager/ConnectionManager-facing whatsapp.Socket:
// a SocketDriver plus the owning sessionId and the outbound helper layered
// over driver.SendMessage via a shared RateBucket. It stores only its own
// sessionId, never a back-pointer to the SessionManager.
type socket struct {
	whatsapp.SocketDriver
	sessionID session.SessionID
	bucket    *ratebucket.Bucket
}

func newSocket(d whatsapp.SocketDriver, sessionID session.SessionID, bucket *ratebucket.Bucket) *socket {
	return &socket{SocketDriver: d, sessionID: sessionID, bucket: bucket}
}

func (s *socket) SessionID() session.SessionID {
	return s.sessionID
}

// SendText funnels through the shared RateBucket, races a 40s timeout,
// retries up to twice on classifiable-transient errors with 1s/2s backoff,
// and — on a rate-overlimit failure whose payload carried mentions —
// retries once more without mentions, since mentions make the driver fetch
// group metadata and multiply rate budget.
func (s *socket) SendText(ctx context.Context, jid, text string, mentions []string) (whatsapp.SendResult, error) {
	content := whatsapp.MessageContent{Text: text, Mentions: mentions}
	result, err := s.sendWithRetry(ctx, jid, content)
	if err == nil {
		return result, nil
	}

	if err == ErrRateOverlimit && len(mentions) > 0 {
		fallback := whatsapp.MessageContent{Text: text}
		return s.sendWithRetry(ctx, jid, fallback)
	}
	return result, err
}

func (s *socket) sendWithRetry(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
	var lastErr error
	for attempt := 0; attempt <= maxSendRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBackoff1
			if attempt == 2 {
				backoff = retryBackoff2
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return whatsapp.SendResult{}, ctx.Err()
			}
		}

		result, err := s.sendOnce(ctx, jid, content)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if neverRetry(err) {
			return whatsapp.SendResult{}, err
		}
		if err != ErrTransient {
			return whatsapp.SendResult{}, err
		}
	}
	return whatsapp.SendResult{}, lastErr
}

func (s *socket) sendOnce(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var result whatsapp.SendResult
	err := s.bucket.Do(sendCtx, sendClass, func(ctx context.Context) error {
		var sendErr error
		result, sendErr = s.SocketDriver.SendMessage(ctx, jid, content, whatsapp.SendOptions{Timestamp: time.Now()})
		return sendErr
	})
	if err != nil && sendCtx.Err() != nil && ctx.Err() == nil {
		// The 40s per-call timer expired, not the caller's context; this
		// is a retryable timeout.
		return result, ErrTransient
	}
	return result, err
}
