package repository

import (
	"context"
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

// Housekeeping depends on interfaces, not concrete implementations, so the
// pure SLA/recurrence logic stays testable without a database.
type TicketRepository interface {
	// ListPendingExpired returns Pending tickets whose hold elapsed at or
	// before asOf.
	ListPendingExpired(ctx context.Context, asOf time.Time) ([]*domain.Ticket, error)

	// ListOpenWithSLARunning returns Open tickets with a started SLA.
	ListOpenWithSLARunning(ctx context.Context) ([]*domain.Ticket, error)

	// Reopen flips a Pending ticket back to Open and clears the hold. The
	// write is guarded on status = Pending; the bool reports whether this
	// call actually flipped it, so re-running a pass over the same
	// candidate is a detectable no-op.
	Reopen(ctx context.Context, ticketID string) (bool, error)

	// UpdateSLAFields persists the SLA bookkeeping columns after a status
	// transition has been applied to the ticket value.
	UpdateSLAFields(ctx context.Context, t *domain.Ticket) error

	// RecordEscalation stores a new escalation level and its timestamp.
	// Guarded on last_sla_level < level: levels only ever increase.
	RecordEscalation(ctx context.Context, ticketID string, level int, at time.Time) error

	// Create inserts a materialized ticket and returns it with its
	// generated ID and ticket number.
	Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)

	// AppendLog adds an audit entry.
	AppendLog(ctx context.Context, entry domain.TicketLog) error
}
