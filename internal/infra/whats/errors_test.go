package whats

import (
	"errors"
	"testing"

	"wazmeow/internal/infra/groupcache"
)

func TestNeverRetry(t *testing.T) {
	cases := []struct {
		err      error
		wantStop bool
	}{
		{ErrForbidden, true},
		{ErrNotAuthorized, true},
		{ErrInvalidJID, true},
		{ErrRecipientMissing, true},
		{ErrRateOverlimit, true},
		{ErrTransient, false},
		{errors.New("some other error"), false},
	}
	for _, c := range cases {
		if got := neverRetry(c.err); got != c.wantStop {
			t.Errorf("neverRetry(%v) = %v, want %v", c.err, got, c.wantStop)
		}
	}
}

func TestClassifySendError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"user is forbidden from sending", ErrForbidden},
		{"sender not in group", ErrForbidden},
		{"not authorized to perform this action", ErrNotAuthorized},
		{"recipient not found", ErrRecipientMissing},
		{"no such recipient", ErrRecipientMissing},
		{"rate limit exceeded", ErrRateOverlimit},
		{"request timeout", ErrTransient},
		{"connection reset", ErrTransient},
		{"context deadline exceeded", ErrTransient},
	}
	for _, c := range cases {
		got := classifySendError(errors.New(c.msg))
		if !errors.Is(got, c.want) {
			t.Errorf("classifySendError(%q) = %v, want %v", c.msg, got, c.want)
		}
	}

	if classifySendError(nil) != nil {
		t.Error("classifySendError(nil) should be nil")
	}

	unmatched := errors.New("totally unexpected failure")
	if got := classifySendError(unmatched); got != unmatched {
		t.Errorf("classifySendError should pass through unclassified errors unchanged, got %v", got)
	}
}

func TestClassifyGroupError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"403 forbidden", groupcache.ErrForbidden},
		{"not in group", groupcache.ErrForbidden},
		{"server responded 406", groupcache.ErrForbidden},
		{"rate limit hit", groupcache.ErrRateLimited},
		{"server responded 429", groupcache.ErrRateLimited},
	}
	for _, c := range cases {
		got := classifyGroupError(errors.New(c.msg))
		if !errors.Is(got, c.want) {
			t.Errorf("classifyGroupError(%q) = %v, want %v", c.msg, got, c.want)
		}
	}

	if classifyGroupError(nil) != nil {
		t.Error("classifyGroupError(nil) should be nil")
	}
}
