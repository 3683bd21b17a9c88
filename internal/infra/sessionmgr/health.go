package sessionmgr

import (
	"time"

	"wazmeow/internal/domain/session"
	"wazmeow/pkg/logger"
)

const (
	livenessProbeAge = 30 * time.Minute
	auxStateDropAge  = 10 * time.Minute
	healthSweepCron  = "*/5 * * * *" // every 5 minutes, fine-grained enough against 30min/10min thresholds
)

// HealthHooks are the side effects the health monitor triggers; both are
// optional. ProbeLiveness fires once a session has gone quiet for 30
// minutes; DropAuxState fires once it has gone quiet for 10 minutes.
type HealthHooks struct {
	ProbeLiveness func(sessionID session.SessionID)
	DropAuxState  func(sessionID session.SessionID)
}

// healthMonitor periodically sweeps the registry for inactive sessions, per
// liveness thresholds below.
type healthMonitor struct {
	reg   *registry
	hooks HealthHooks
	log   logger.Logger

	auxDropped map[session.SessionID]bool
}

func newHealthMonitor(reg *registry, hooks HealthHooks, log logger.Logger) *healthMonitor {
	return &healthMonitor{reg: reg, hooks: hooks, log: log, auxDropped: make(map[session.SessionID]bool)}
}

// sweep scans every registered session's lastMessageAt and fires the
// configured hooks for sessions past the 30min/10min thresholds.
func (h *healthMonitor) sweep() {
	now := time.Now()
	for id, state := range h.reg.snapshot() {
		if state.LastMessageAt.IsZero() {
			continue
		}
		idle := now.Sub(state.LastMessageAt)

		if idle > livenessProbeAge && h.hooks.ProbeLiveness != nil {
			h.hooks.ProbeLiveness(id)
		}
		if idle > auxStateDropAge && !h.auxDropped[id] {
			h.auxDropped[id] = true
			if h.hooks.DropAuxState != nil {
				h.hooks.DropAuxState(id)
			}
		} else if idle <= auxStateDropAge {
			delete(h.auxDropped, id)
		}
	}
}
