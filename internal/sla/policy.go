// Package sla holds the per-priority SLA policy, the per-ticket business
// clock, and the escalation decision engine.
package sla

import (
	"github.com/workshop17/ticketing-engine/internal/domain"
)

// Thresholds are business seconds for one priority tier. Reset is the
// additional window after Target before the second breach fires; a zero
// Reset means "same as Target" (second breach at 2x Target).
type Thresholds struct {
	Target int64
	Reset  int64
}

// Policy maps ticket priority to SLA thresholds. Unknown priorities fall
// back to the longest tier so bad input never over-escalates.
type Policy struct {
	table    map[domain.TicketPriority]Thresholds
	fallback Thresholds
}

// DefaultPolicy returns the shipped table:
// Critical 2h, High 4h, Medium 12h, Low 24h (business hours).
func DefaultPolicy() *Policy {
	return NewPolicy(map[domain.TicketPriority]Thresholds{
		domain.PriorityCritical: {Target: 2 * 3600},
		domain.PriorityHigh:     {Target: 4 * 3600},
		domain.PriorityMedium:   {Target: 12 * 3600},
		domain.PriorityLow:      {Target: 24 * 3600},
	})
}

// NewPolicy builds a policy from a threshold table. Entries with a zero or
// negative Reset inherit Target. The fallback tier is the entry with the
// longest Target; an empty table falls back to 24 business hours.
func NewPolicy(table map[domain.TicketPriority]Thresholds) *Policy {
	p := &Policy{
		table:    make(map[domain.TicketPriority]Thresholds, len(table)),
		fallback: Thresholds{Target: 24 * 3600, Reset: 24 * 3600},
	}
	var longest int64
	for priority, th := range table {
		if th.Target <= 0 {
			continue
		}
		if th.Reset <= 0 {
			th.Reset = th.Target
		}
		p.table[priority] = th
		if th.Target > longest {
			longest = th.Target
			p.fallback = th
		}
	}
	return p
}

// TargetSeconds returns the resolution target for priority.
func (p *Policy) TargetSeconds(priority domain.TicketPriority) int64 {
	return p.lookup(priority).Target
}

// ResetSeconds returns the escalation reset window for priority.
func (p *Policy) ResetSeconds(priority domain.TicketPriority) int64 {
	return p.lookup(priority).Reset
}

func (p *Policy) lookup(priority domain.TicketPriority) Thresholds {
	if th, ok := p.table[priority]; ok {
		return th
	}
	return p.fallback
}
