package whats

import (
	"testing"

	"wazmeow/internal/domain/whatsapp"
)

func TestClassifyDisconnect(t *testing.T) {
	m := &ConnectionManager{}

	cases := []struct {
		name       string
		statusCode int
		reason     string
		want       whatsapp.DisconnectDecision
	}{
		{"logged out by status code", loggedOutStatusCode, "", whatsapp.DecisionPermanentPurge},
		{"logged out by reason text", 0, "user logged out", whatsapp.DecisionPermanentPurge},
		{"session replaced", 0, "session replaced by another device", whatsapp.DecisionPermanentPurge},
		{"stream conflict", 0, "stream:error conflict", whatsapp.DecisionReconnect},
		{"concurrent session", 0, "concurrent connection detected", whatsapp.DecisionReconnect},
		{"timeout", 0, "read timeout", whatsapp.DecisionReconnect},
		{"connection lost", 0, "connection lost", whatsapp.DecisionReconnect},
		{"zero code unknown reason", 0, "", whatsapp.DecisionReconnect},
		{"other 4xx", 403, "forbidden", whatsapp.DecisionPermanentKeep},
		{"5xx falls back to reconnect", 503, "service unavailable", whatsapp.DecisionReconnect},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := m.ClassifyDisconnect(c.statusCode, c.reason)
			if got != c.want {
				t.Errorf("ClassifyDisconnect(%d, %q) = %v, want %v", c.statusCode, c.reason, got, c.want)
			}
		})
	}
}
