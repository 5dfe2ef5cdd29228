package sla

import (
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

// Escalation describes one breach decision: the level to escalate to and
// how far past the crossed threshold the ticket is.
type Escalation struct {
	Level          int
	ElapsedSeconds int64
	OverSeconds    int64
}

// Engine decides escalation levels. Levels only move 0 -> 1 -> 2; the
// engine never lowers a ticket's recorded level.
type Engine struct {
	policy *Policy
	clock  *Clock
}

func NewEngine(policy *Policy, clock *Clock) *Engine {
	return &Engine{policy: policy, clock: clock}
}

// Evaluate returns the escalation due for the ticket as of asOf, or false
// when no new escalation is due. The function is total over any ticket with
// a started SLA; filtering to Open tickets is the caller's responsibility.
// Recording LastSLALevel / LastSLAEscalatedAt is also the caller's job.
func (e *Engine) Evaluate(t *domain.Ticket, asOf time.Time) (Escalation, bool) {
	elapsed := e.clock.ElapsedBusinessSeconds(t, asOf)
	target := e.policy.TargetSeconds(t.Priority)
	reset := e.policy.ResetSeconds(t.Priority)

	level := 0
	if t.LastSLALevel < 1 && elapsed >= target {
		level = 1
	}
	if t.LastSLALevel < 2 && elapsed >= target+reset {
		level = 2
	}
	if level == 0 {
		return Escalation{}, false
	}

	threshold := target
	if level == 2 {
		threshold = target + reset
	}
	over := elapsed - threshold
	if over < 0 {
		over = 0
	}

	return Escalation{Level: level, ElapsedSeconds: elapsed, OverSeconds: over}, true
}

// NextLevel is Evaluate reduced to the level alone; 0 means no escalation due.
func (e *Engine) NextLevel(t *domain.Ticket, asOf time.Time) int {
	esc, ok := e.Evaluate(t, asOf)
	if !ok {
		return 0
	}
	return esc.Level
}
