package sla_test

import (
	"testing"
	"time"

	"github.com/workshop17/ticketing-engine/internal/businesstime"
	"github.com/workshop17/ticketing-engine/internal/domain"
	"github.com/workshop17/ticketing-engine/internal/sla"
)

func newEngine() *sla.Engine {
	clock := sla.NewClock(businesstime.Default())
	return sla.NewEngine(sla.DefaultPolicy(), clock)
}

func openTicket(priority domain.TicketPriority, started time.Time, level int) *domain.Ticket {
	return &domain.Ticket{
		Status:       domain.StatusOpen,
		Priority:     priority,
		SLAStartedAt: tp(started),
		LastSLALevel: level,
	}
}

func TestEvaluate_FirstBreachAtTarget(t *testing.T) {
	engine := newEngine()
	ticket := openTicket(domain.PriorityHigh, at(1, 8, 0), 0) // 4h target

	if lvl := engine.NextLevel(ticket, at(1, 11, 59)); lvl != 0 {
		t.Fatalf("before target: got level %d, want 0", lvl)
	}
	if lvl := engine.NextLevel(ticket, at(1, 12, 0)); lvl != 1 {
		t.Fatalf("at target: got level %d, want 1", lvl)
	}
}

func TestEvaluate_SecondBreachAtTargetPlusReset(t *testing.T) {
	engine := newEngine()
	// Critical: 2h target, 2h reset -> level 2 at 4h elapsed.
	ticket := openTicket(domain.PriorityCritical, at(1, 8, 0), 1)

	if lvl := engine.NextLevel(ticket, at(1, 11, 0)); lvl != 0 {
		t.Fatalf("already at level 1, below 2x target: got %d, want 0", lvl)
	}
	if lvl := engine.NextLevel(ticket, at(1, 12, 0)); lvl != 2 {
		t.Fatalf("at 2x target: got %d, want 2", lvl)
	}
}

func TestEvaluate_JumpsStraightToTwoWhenFarOver(t *testing.T) {
	engine := newEngine()
	// Never escalated, but already past target+reset: level 2 wins.
	ticket := openTicket(domain.PriorityCritical, at(1, 8, 0), 0)

	esc, ok := engine.Evaluate(ticket, at(1, 13, 0))
	if !ok || esc.Level != 2 {
		t.Fatalf("far over target: got %+v ok=%v, want level 2", esc, ok)
	}
	if esc.OverSeconds != 3600 {
		t.Fatalf("over seconds: got %d, want 3600", esc.OverSeconds)
	}
}

func TestEvaluate_NeverLowersLevel(t *testing.T) {
	engine := newEngine()
	ticket := openTicket(domain.PriorityHigh, at(1, 8, 0), 2)

	// Deep in breach but already at the top level: nothing to do.
	if lvl := engine.NextLevel(ticket, at(5, 16, 0)); lvl != 0 {
		t.Fatalf("max level ticket: got %d, want 0", lvl)
	}
}

func TestEvaluate_UnknownPriorityUsesLongestTier(t *testing.T) {
	engine := newEngine()
	ticket := openTicket(domain.TicketPriority("Urgent"), at(1, 8, 0), 0)

	// Longest tier is 24 business hours; 9h elapsed by end of Monday.
	if lvl := engine.NextLevel(ticket, at(1, 17, 0)); lvl != 0 {
		t.Fatalf("unknown priority escalated early: got %d, want 0", lvl)
	}
	// 24 business hours elapse during Wednesday (9+9+6 by Wed 14:00).
	if lvl := engine.NextLevel(ticket, at(3, 14, 0)); lvl != 1 {
		t.Fatalf("unknown priority at 24h: got %d, want 1", lvl)
	}
}

// Opened Monday 08:00 High (4h target), Pending 09:00-11:00. Elapsed
// reaches the target exactly at 14:00, not a minute earlier.
func TestEvaluate_PausedTicketScenario(t *testing.T) {
	engine := newEngine()
	ticket := &domain.Ticket{
		Status:           domain.StatusOpen,
		Priority:         domain.PriorityHigh,
		SLAStartedAt:     tp(at(1, 8, 0)),
		SLAPausedSeconds: 2 * 3600,
	}

	if lvl := engine.NextLevel(ticket, at(1, 13, 59)); lvl != 0 {
		t.Fatalf("one minute early: got %d, want 0", lvl)
	}
	esc, ok := engine.Evaluate(ticket, at(1, 14, 0))
	if !ok || esc.Level != 1 {
		t.Fatalf("at adjusted target: got %+v ok=%v, want level 1", esc, ok)
	}
	if esc.ElapsedSeconds != 4*3600 || esc.OverSeconds != 0 {
		t.Fatalf("elapsed/over: got %d/%d, want %d/0", esc.ElapsedSeconds, esc.OverSeconds, 4*3600)
	}
}

func TestDefaultPolicy_Table(t *testing.T) {
	p := sla.DefaultPolicy()

	cases := []struct {
		priority domain.TicketPriority
		hours    int64
	}{
		{domain.PriorityCritical, 2},
		{domain.PriorityHigh, 4},
		{domain.PriorityMedium, 12},
		{domain.PriorityLow, 24},
		{domain.TicketPriority("nonsense"), 24},
	}
	for _, c := range cases {
		if got := p.TargetSeconds(c.priority); got != c.hours*3600 {
			t.Fatalf("%s target: got %d, want %d", c.priority, got, c.hours*3600)
		}
		// Reset defaults to target.
		if got := p.ResetSeconds(c.priority); got != c.hours*3600 {
			t.Fatalf("%s reset: got %d, want %d", c.priority, got, c.hours*3600)
		}
	}
}
