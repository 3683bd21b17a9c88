package sessionmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
)

func TestManager_CreateSessionRegistersSocketAndPersistsRow(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})
	defer m.Shutdown(context.Background())

	sock, err := m.CreateSession(context.Background(), "user-1", "5511999999999", whatsapp.Callbacks{}, false, session.SourceWeb, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sock == nil {
		t.Fatal("expected a non-nil socket")
	}

	id := session.NewSessionID("user-1")
	got, ok := m.GetSession(id)
	if !ok || got != sock {
		t.Fatalf("expected GetSession to return the created socket")
	}

	sess, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected a persisted session row: %v", err)
	}
	if sess.Status() != session.StatusConnecting {
		t.Errorf("expected status connecting right after create, got %v", sess.Status())
	}
}

func TestManager_CreateSessionRejectsDuplicateRegistration(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})
	defer m.Shutdown(context.Background())

	ctx := context.Background()
	if _, err := m.CreateSession(ctx, "user-1", "", whatsapp.Callbacks{}, false, session.SourceWeb, false); err != nil {
		t.Fatalf("unexpected error on first create: %v", err)
	}
	_, err := m.CreateSession(ctx, "user-1", "", whatsapp.Callbacks{}, false, session.SourceWeb, false)
	if !errors.Is(err, ErrAlreadySessionRegistered) {
		t.Fatalf("expected ErrAlreadySessionRegistered, got %v", err)
	}
}

func TestManager_DisconnectSessionForceCleanup(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})
	defer m.Shutdown(context.Background())

	ctx := context.Background()
	_, err := m.CreateSession(ctx, "user-1", "", whatsapp.Callbacks{}, false, session.SourceWeb, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := session.NewSessionID("user-1")
	if err := m.DisconnectSession(ctx, id, true); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}

	if _, ok := m.GetSession(id); ok {
		t.Error("expected the socket to be removed from the registry")
	}
	if len(authStore.cleaned) != 1 || authStore.cleaned[0] != id.String() {
		t.Errorf("expected AuthStore.Cleanup to be called for %s, got %v", id.String(), authStore.cleaned)
	}
}

func TestManager_DisconnectSessionNotFoundWithoutForceCleanup(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})
	defer m.Shutdown(context.Background())

	id := session.NewSessionID("ghost")
	err := m.DisconnectSession(context.Background(), id, false)
	if err == nil {
		t.Fatal("expected an error for a session that was never registered")
	}
}

func TestManager_GetStatsCountsRegisteredSessions(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})
	defer m.Shutdown(context.Background())

	ctx := context.Background()
	for _, user := range []string{"a", "b", "c"} {
		if _, err := m.CreateSession(ctx, user, "", whatsapp.Callbacks{}, false, session.SourceWeb, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats := m.GetStats()
	if stats.TotalSessions != 3 {
		t.Errorf("expected 3 total sessions, got %d", stats.TotalSessions)
	}
}

func TestManager_ShutdownClosesAllSockets(t *testing.T) {
	connMgr := newFakeConnectionManager()
	repo := newFakeSessionRepo()
	authStore := &fakeAuthStore{}

	m := New(connMgr, repo, authStore, Config{}, noopLogger{})

	ctx := context.Background()
	if _, err := m.CreateSession(ctx, "user-1", "", whatsapp.Callbacks{}, false, session.SourceWeb, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := session.NewSessionID("user-1")
	sock := connMgr.created[id]

	done := make(chan struct{})
	go func() {
		_ = m.Shutdown(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}

	if !sock.closed {
		t.Error("expected the socket to be closed on shutdown")
	}
	if m.registry.len() != 0 {
		t.Error("expected the registry to be empty after shutdown")
	}
}
