package sessionmgr

import (
	"testing"
	"time"

	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
)

func TestHealthMonitor_ProbesAfter30Minutes(t *testing.T) {
	reg := newRegistry()
	id := session.NewSessionID("user-1")
	reg.put(id, &fakeSocket{sessionID: id})
	reg.mutateState(id, func(s *whatsapp.SessionState) {
		s.LastMessageAt = time.Now().Add(-31 * time.Minute)
	})

	var probed []session.SessionID
	h := newHealthMonitor(reg, HealthHooks{
		ProbeLiveness: func(sid session.SessionID) { probed = append(probed, sid) },
	}, noopLogger{})

	h.sweep()

	if len(probed) != 1 || probed[0] != id {
		t.Errorf("expected session %v to be probed, got %v", id, probed)
	}
}

func TestHealthMonitor_DropsAuxStateAfter10MinutesOnce(t *testing.T) {
	reg := newRegistry()
	id := session.NewSessionID("user-1")
	reg.put(id, &fakeSocket{sessionID: id})
	reg.mutateState(id, func(s *whatsapp.SessionState) {
		s.LastMessageAt = time.Now().Add(-11 * time.Minute)
	})

	drops := 0
	h := newHealthMonitor(reg, HealthHooks{
		DropAuxState: func(sid session.SessionID) { drops++ },
	}, noopLogger{})

	h.sweep()
	h.sweep()

	if drops != 1 {
		t.Errorf("expected DropAuxState to fire exactly once, got %d", drops)
	}
}

func TestHealthMonitor_ActiveSessionsAreIgnored(t *testing.T) {
	reg := newRegistry()
	id := session.NewSessionID("user-1")
	reg.put(id, &fakeSocket{sessionID: id})
	reg.mutateState(id, func(s *whatsapp.SessionState) {
		s.LastMessageAt = time.Now()
	})

	called := false
	h := newHealthMonitor(reg, HealthHooks{
		ProbeLiveness: func(session.SessionID) { called = true },
		DropAuxState:  func(session.SessionID) { called = true },
	}, noopLogger{})

	h.sweep()

	if called {
		t.Error("expected no hooks to fire for a recently-active session")
	}
}

func TestHealthMonitor_ZeroLastMessageAtIsSkipped(t *testing.T) {
	reg := newRegistry()
	id := session.NewSessionID("user-1")
	reg.put(id, &fakeSocket{sessionID: id})

	called := false
	h := newHealthMonitor(reg, HealthHooks{
		ProbeLiveness: func(session.SessionID) { called = true },
	}, noopLogger{})

	h.sweep()

	if called {
		t.Error("a session with a zero LastMessageAt (never messaged) should not trigger a probe")
	}
}
