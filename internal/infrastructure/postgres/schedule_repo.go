package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workshop17/ticketing-engine/internal/domain"
)

type ScheduledTaskRepository struct {
	pool *pgxpool.Pool
}

func NewScheduledTaskRepository(pool *pgxpool.Pool) *ScheduledTaskRepository {
	return &ScheduledTaskRepository{pool: pool}
}

func (r *ScheduledTaskRepository) ListDue(ctx context.Context, asOf time.Time) ([]*domain.ScheduledTask, error) {
	query := `
		SELECT id, title, template_id, schedule_type, COALESCE(by_day, ''),
		       COALESCE(day_of_month, 0), start_date, COALESCE(timezone, ''),
		       dispatch_mode, next_run_at, last_run_at, active, created_by,
		       created_at, updated_at
		FROM scheduled_tasks
		WHERE active = true AND next_run_at IS NOT NULL AND next_run_at <= $1
		ORDER BY next_run_at`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.ScheduledTask
	for rows.Next() {
		var t domain.ScheduledTask
		var byDay string
		err := rows.Scan(
			&t.ID, &t.Title, &t.TemplateID, &t.ScheduleType, &byDay,
			&t.DayOfMonth, &t.StartDate, &t.Timezone,
			&t.DispatchMode, &t.NextRunAt, &t.LastRunAt, &t.Active, &t.CreatedBy,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.ByDay = splitByDay(byDay)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *ScheduledTaskRepository) UpdateNextRun(ctx context.Context, taskID string, next *time.Time, ranAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_tasks SET next_run_at = $2, last_run_at = $3, updated_at = now()
		 WHERE id = $1`,
		taskID, next, ranAt)
	if err != nil {
		return fmt.Errorf("update next run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *ScheduledTaskRepository) GetTemplate(ctx context.Context, templateID string) (*domain.TaskTemplate, error) {
	var tpl domain.TaskTemplate
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM task_templates WHERE id = $1`,
		templateID).Scan(&tpl.ID, &tpl.Name, &tpl.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, text, required FROM task_template_items
		 WHERE template_id = $1 ORDER BY position, id`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.TemplateItem
		if err := rows.Scan(&item.ID, &item.Text, &item.Required); err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		tpl.Items = append(tpl.Items, item)
	}
	return &tpl, rows.Err()
}

func (r *ScheduledTaskRepository) ListAssignees(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM scheduled_task_assignees WHERE task_id = $1 ORDER BY user_id`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		assignees = append(assignees, userID)
	}
	return assignees, rows.Err()
}

func (r *ScheduledTaskRepository) ListItemAssignees(ctx context.Context, taskID string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT item_id, user_id FROM scheduled_task_item_assignees WHERE task_id = $1`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("list item assignees: %w", err)
	}
	defer rows.Close()

	assignees := make(map[string]string)
	for rows.Next() {
		var itemID, userID string
		if err := rows.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("scan item assignee: %w", err)
		}
		assignees[itemID] = userID
	}
	return assignees, rows.Err()
}

func (r *ScheduledTaskRepository) CreateRun(ctx context.Context, taskID string, runDate time.Time) (*domain.TaskRun, error) {
	var run domain.TaskRun
	err := r.pool.QueryRow(ctx,
		`INSERT INTO scheduled_task_runs (task_id, run_date) VALUES ($1, $2)
		 RETURNING id, task_id, run_date`,
		taskID, runDate).Scan(&run.ID, &run.TaskID, &run.RunDate)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &run, nil
}

func (r *ScheduledTaskRepository) LinkRunTicket(ctx context.Context, runID, ticketID, assigneeID string, itemID *string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scheduled_task_run_tickets (run_id, ticket_id, assignee_id, item_id)
		 VALUES ($1, $2, $3, $4)`,
		runID, ticketID, assigneeID, itemID)
	if err != nil {
		return fmt.Errorf("link run ticket: %w", err)
	}
	return nil
}

// by_day is stored as a comma-joined list of two-letter codes ("MO,WE,FR").
func splitByDay(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
