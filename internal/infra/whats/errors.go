package whats

import (
	"errors"
	"strings"

	"wazmeow/internal/infra/groupcache"
)

// Sentinel errors for the outbound send classification table: the
// never-retry set, plus ErrInvalidJID raised on malformed recipients.
var (
	ErrInvalidJID       = errors.New("whats: invalid jid")
	ErrForbidden        = errors.New("whats: forbidden")
	ErrNotAuthorized    = errors.New("whats: not authorized")
	ErrRecipientMissing = errors.New("whats: recipient not found")
	ErrRateOverlimit    = errors.New("whats: rate overlimit")
	ErrTransient        = errors.New("whats: transient transport error")
)

// neverRetry classifies the error set that must never be retried.
func neverRetry(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrInvalidJID) ||
		errors.Is(err, ErrRecipientMissing) ||
		errors.Is(err, ErrRateOverlimit)
}

// classifySendError maps a whatsmeow send error onto the sentinel classes
// the retry/rate-overlimit-fallback logic in socket.go dispatches on.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "not in group"):
		return ErrForbidden
	case strings.Contains(msg, "not authorized") || strings.Contains(msg, "unauthorized"):
		return ErrNotAuthorized
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no such recipient"):
		return ErrRecipientMissing
	case strings.Contains(msg, "rate") && strings.Contains(msg, "limit"):
		return ErrRateOverlimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "context deadline"):
		return ErrTransient
	default:
		return err
	}
}

// classifyGroupError maps a whatsmeow group-metadata error onto the
// groupcache package's classification sentinels.
func classifyGroupError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "not in group") || strings.Contains(msg, "406"):
		return groupcache.ErrForbidden
	case strings.Contains(msg, "rate") && strings.Contains(msg, "limit"):
		return groupcache.ErrRateLimited
	case strings.Contains(msg, "429"):
		return groupcache.ErrRateLimited
	default:
		return err
	}
}
