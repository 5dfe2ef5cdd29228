package repository

import (
	"context"
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

type ScheduledTaskRepository interface {
	// ListDue returns active definitions with next_run_at <= asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]*domain.ScheduledTask, error)

	// UpdateNextRun persists the recomputed occurrence (nil when the
	// look-ahead found none) and stamps last_run_at.
	UpdateNextRun(ctx context.Context, taskID string, next *time.Time, ranAt time.Time) error

	GetTemplate(ctx context.Context, templateID string) (*domain.TaskTemplate, error)

	// ListAssignees returns the user IDs a task fans out to in dispatch
	// mode "all".
	ListAssignees(ctx context.Context, taskID string) ([]string, error)

	// ListItemAssignees returns itemID -> userID for dispatch mode
	// "per_item". Items without an assignee are absent.
	ListItemAssignees(ctx context.Context, taskID string) (map[string]string, error)

	// CreateRun opens a run record for one materialization.
	CreateRun(ctx context.Context, taskID string, runDate time.Time) (*domain.TaskRun, error)

	// LinkRunTicket attaches a created ticket to a run. itemID is non-nil
	// only for per-item dispatch.
	LinkRunTicket(ctx context.Context, runID, ticketID, assigneeID string, itemID *string) error
}
