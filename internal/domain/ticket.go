package domain

import (
	"time"
)

type TicketStatus string

const (
	StatusNew      TicketStatus = "New"
	StatusOpen     TicketStatus = "Open"
	StatusPending  TicketStatus = "Pending"
	StatusResolved TicketStatus = "Resolved"
	StatusClosed   TicketStatus = "Closed"
)

type TicketPriority string

const (
	PriorityLow      TicketPriority = "Low"
	PriorityMedium   TicketPriority = "Medium"
	PriorityHigh     TicketPriority = "High"
	PriorityCritical TicketPriority = "Critical"
)

type Ticket struct {
	ID           string
	TicketNumber string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Queue        string
	AgentID      *string // nil means unassigned

	// Pending hold: while Status is Pending, PendingUntil is the instant
	// at which housekeeping reopens the ticket.
	PendingUntil *time.Time

	// SLA state. SLAStartedAt is set once, on the first transition into
	// Open. SLAPausedStartedAt is non-nil exactly while a Pending pause is
	// in progress; closed pauses accumulate into SLAPausedSeconds.
	SLAStartedAt       *time.Time
	SLAPausedStartedAt *time.Time
	SLAPausedSeconds   int64
	LastSLALevel       int
	LastSLAEscalatedAt *time.Time

	CreatedBy *string
	CreatedAt time.Time
}

// LogAction values mirror the ticket audit log enum.
type LogAction string

const (
	LogActionStatus LogAction = "status"
	LogActionOther  LogAction = "other"
)

// TicketLog is one audit entry appended by housekeeping.
type TicketLog struct {
	TicketID string
	ActorID  *string // nil for system actions
	Action   LogAction
	Meta     map[string]any
}
