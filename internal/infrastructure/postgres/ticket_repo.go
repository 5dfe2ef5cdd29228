package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workshop17/ticketing-engine/internal/domain"
)

const ticketColumns = `
	id, ticket_number, subject, COALESCE(description, ''), status, priority,
	COALESCE(queue, ''), agent_id, pending_until,
	sla_started_at, sla_paused_started_at, sla_paused_seconds,
	last_sla_level, last_sla_escalated_at, created_by, created_at`

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) ListPendingExpired(ctx context.Context, asOf time.Time) ([]*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'Pending' AND pending_until IS NOT NULL AND pending_until <= $1`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("list pending expired: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *TicketRepository) ListOpenWithSLARunning(ctx context.Context) ([]*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'Open' AND sla_started_at IS NOT NULL`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open with sla running: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *TicketRepository) Reopen(ctx context.Context, ticketID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET status = 'Open', pending_until = NULL
		 WHERE id = $1 AND status = 'Pending'`,
		ticketID)
	if err != nil {
		return false, fmt.Errorf("reopen ticket: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TicketRepository) UpdateSLAFields(ctx context.Context, t *domain.Ticket) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tickets
		 SET sla_started_at = $2, sla_paused_started_at = $3, sla_paused_seconds = $4
		 WHERE id = $1`,
		t.ID, t.SLAStartedAt, t.SLAPausedStartedAt, t.SLAPausedSeconds)
	if err != nil {
		return fmt.Errorf("update sla fields: %w", err)
	}
	return nil
}

func (r *TicketRepository) RecordEscalation(ctx context.Context, ticketID string, level int, at time.Time) error {
	// Guarded: levels only ever increase, so a concurrent or repeated pass
	// cannot double-fire.
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET last_sla_level = $2, last_sla_escalated_at = $3
		 WHERE id = $1 AND last_sla_level < $2`,
		ticketID, level, at)
	if err != nil {
		return fmt.Errorf("record escalation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	query := `
		INSERT INTO tickets (
			ticket_number, subject, description, status, priority, queue,
			agent_id, created_by, sla_started_at, created_at
		) VALUES (
			to_char(now(), 'YYYYMMDD') || '-' || lpad(nextval('ticket_number_seq')::text, 4, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING ` + ticketColumns

	row := r.pool.QueryRow(ctx, query,
		t.Subject, t.Description, t.Status, t.Priority, t.Queue,
		t.AgentID, t.CreatedBy, t.SLAStartedAt, t.CreatedAt)

	return scanTicket(row)
}

func (r *TicketRepository) AppendLog(ctx context.Context, entry domain.TicketLog) error {
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return fmt.Errorf("marshal log meta: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO ticket_logs (ticket_id, actor_id, action, meta) VALUES ($1, $2, $3, $4)`,
		entry.TicketID, entry.ActorID, entry.Action, meta)
	if err != nil {
		return fmt.Errorf("append ticket log: %w", err)
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.TicketNumber, &t.Subject, &t.Description, &t.Status, &t.Priority,
		&t.Queue, &t.AgentID, &t.PendingUntil,
		&t.SLAStartedAt, &t.SLAPausedStartedAt, &t.SLAPausedSeconds,
		&t.LastSLALevel, &t.LastSLAEscalatedAt, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	return &t, nil
}
