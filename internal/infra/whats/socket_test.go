package whats

import (
	"context"
	"errors"
	"testing"
	"time"

	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/infra/ratebucket"
)

type fakeBus struct{}

func (fakeBus) On(whatsapp.EventType, whatsapp.Handler) func() { return func() {} }
func (fakeBus) Emit(whatsapp.EventType, interface{})           {}

type fakeDriver struct {
	sendFunc  func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error)
	sendCalls []whatsapp.MessageContent
}

func (f *fakeDriver) User() (string, bool) { return "", false }

func (f *fakeDriver) SendMessage(ctx context.Context, jid string, content whatsapp.MessageContent, opts whatsapp.SendOptions) (whatsapp.SendResult, error) {
	f.sendCalls = append(f.sendCalls, content)
	return f.sendFunc(ctx, jid, content)
}

func (f *fakeDriver) GroupMetadata(ctx context.Context, groupJID string) (*groupmeta.Metadata, error) {
	return nil, nil
}
func (f *fakeDriver) OnWhatsApp(ctx context.Context, phones []string) ([]whatsapp.RegistrationStatus, error) {
	return nil, nil
}
func (f *fakeDriver) NewsletterFollow(ctx context.Context, jid string) error             { return nil }
func (f *fakeDriver) SubscribeNewsletterUpdates(ctx context.Context, jid string) error   { return nil }
func (f *fakeDriver) NewsletterUnmute(ctx context.Context, jid string) error             { return nil }
func (f *fakeDriver) NewsletterMetadata(ctx context.Context, jid string) (*whatsapp.NewsletterMetadata, error) {
	return nil, nil
}
func (f *fakeDriver) ChatModify(ctx context.Context, jid string, mod whatsapp.ChatModification) error {
	return nil
}
func (f *fakeDriver) ResolveLID(ctx context.Context, lid string) (string, error) { return lid, nil }
func (f *fakeDriver) SetGetMessageHook(fn whatsapp.GetMessageFunc)               {}
func (f *fakeDriver) Events() whatsapp.EventBus                                 { return fakeBus{} }
func (f *fakeDriver) RequestPairingCode(ctx context.Context, phoneNumber string) (string, error) {
	return "", nil
}
func (f *fakeDriver) Connect(ctx context.Context) error    { return nil }
func (f *fakeDriver) Disconnect(ctx context.Context) error { return nil }
func (f *fakeDriver) IsConnected() bool                    { return true }
func (f *fakeDriver) IsLoggedIn() bool                     { return true }
func (f *fakeDriver) Close() error                         { return nil }

func newTestSocket(t *testing.T, sendFunc func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error)) (*socket, *fakeDriver) {
	t.Helper()
	sid := session.NewSessionID("user-1")
	drv := &fakeDriver{sendFunc: sendFunc}
	return newSocket(drv, sid, ratebucket.New()), drv
}

func TestSocket_SendText_Success(t *testing.T) {
	sock, drv := newTestSocket(t, func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
		return whatsapp.SendResult{MessageID: "abc"}, nil
	})

	result, err := sock.SendText(context.Background(), "1234@s.whatsapp.net", "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessageID != "abc" {
		t.Errorf("got MessageID %q, want abc", result.MessageID)
	}
	if len(drv.sendCalls) != 1 {
		t.Errorf("expected exactly one send call, got %d", len(drv.sendCalls))
	}
}

func TestSocket_SendText_NeverRetryStopsImmediately(t *testing.T) {
	calls := 0
	sock, _ := newTestSocket(t, func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
		calls++
		return whatsapp.SendResult{}, ErrForbidden
	})

	_, err := sock.SendText(context.Background(), "1234@s.whatsapp.net", "hi", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no retries on a never-retry error, got %d calls", calls)
	}
}

func TestSocket_SendText_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	sock, _ := newTestSocket(t, func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
		calls++
		if calls < 2 {
			return whatsapp.SendResult{}, ErrTransient
		}
		return whatsapp.SendResult{MessageID: "ok"}, nil
	})

	start := time.Now()
	result, err := sock.SendText(context.Background(), "1234@s.whatsapp.net", "hi", nil)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessageID != "ok" {
		t.Errorf("got MessageID %q, want ok", result.MessageID)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls (1 retry), got %d", calls)
	}
	if elapsed < retryBackoff1 {
		t.Errorf("expected at least the %v backoff before the retry, took %v", retryBackoff1, elapsed)
	}
}

func TestSocket_SendText_RateOverlimitWithMentionsFallsBackWithoutMentions(t *testing.T) {
	sock, drv := newTestSocket(t, func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
		if len(content.Mentions) > 0 {
			return whatsapp.SendResult{}, ErrRateOverlimit
		}
		return whatsapp.SendResult{MessageID: "fallback-ok"}, nil
	})

	result, err := sock.SendText(context.Background(), "group@g.us", "hi @someone", []string{"5511999999999@s.whatsapp.net"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessageID != "fallback-ok" {
		t.Errorf("got MessageID %q, want fallback-ok", result.MessageID)
	}
	if len(drv.sendCalls) != 2 {
		t.Fatalf("expected 2 send attempts (mentioned + fallback), got %d", len(drv.sendCalls))
	}
	if len(drv.sendCalls[1].Mentions) != 0 {
		t.Errorf("fallback attempt should carry no mentions, got %v", drv.sendCalls[1].Mentions)
	}
}

func TestSocket_SessionID(t *testing.T) {
	sock, _ := newTestSocket(t, func(ctx context.Context, jid string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
		return whatsapp.SendResult{}, nil
	})
	if sock.SessionID().String() == "" {
		t.Error("expected a non-empty session id")
	}
}
