package sla

import (
	"time"

	"github.com/workshop17/ticketing-engine/internal/businesstime"
	"github.com/workshop17/ticketing-engine/internal/domain"
)

// Clock computes how much business time a ticket has consumed against its
// SLA, and owns the SLA side effects of status transitions.
type Clock struct {
	cal businesstime.Calendar
}

func NewClock(cal businesstime.Calendar) *Clock {
	return &Clock{cal: cal}
}

// ElapsedBusinessSeconds returns the ticket's consumed SLA time as of asOf.
// Returns 0 when the SLA has not started. An in-progress pause is counted
// live, so the value is continuous across the instant the pause closes.
func (c *Clock) ElapsedBusinessSeconds(t *domain.Ticket, asOf time.Time) int64 {
	if t.SLAStartedAt == nil {
		return 0
	}
	raw := c.cal.SecondsBetween(*t.SLAStartedAt, asOf)
	paused := t.SLAPausedSeconds
	if t.SLAPausedStartedAt != nil {
		paused += c.cal.SecondsBetween(*t.SLAPausedStartedAt, asOf)
	}
	if raw < paused {
		return 0
	}
	return raw - paused
}

// ApplyStatusChange mutates the ticket's SLA fields for a transition to
// newStatus at now, then records the new status:
//
//   - into Pending: open a pause (only if one is not already open)
//   - out of Pending: fold the open pause into SLAPausedSeconds, clear the
//     pause start and the pending hold
//   - first transition into Open ever: start the SLA
//
// Persisting the mutated fields is the caller's job.
func (c *Clock) ApplyStatusChange(t *domain.Ticket, newStatus domain.TicketStatus, now time.Time) {
	if newStatus == domain.StatusPending && t.Status != domain.StatusPending {
		if t.SLAPausedStartedAt == nil {
			started := now
			t.SLAPausedStartedAt = &started
		}
	}

	if t.Status == domain.StatusPending && newStatus != domain.StatusPending {
		if t.SLAPausedStartedAt != nil {
			t.SLAPausedSeconds += c.cal.SecondsBetween(*t.SLAPausedStartedAt, now)
			t.SLAPausedStartedAt = nil
		}
		t.PendingUntil = nil
	}

	if newStatus == domain.StatusOpen && t.SLAStartedAt == nil {
		started := now
		t.SLAStartedAt = &started
	}

	t.Status = newStatus
}
