package auth

import "errors"

// Store failure modes: a rejected creds write, a fatal local IO error
// (caller must treat the session as corrupted), and a secondary-tier
// timeout (non-fatal, accounted to backup health).
var (
	ErrLocalIO          = errors.New("auth: local io error")
	ErrSecondaryTimeout = errors.New("auth: secondary tier timeout")
	ErrNotFound         = errors.New("auth: record not found")
	ErrHandleClosed     = errors.New("auth: handle closed")
)
