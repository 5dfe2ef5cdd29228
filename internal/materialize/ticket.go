// Package materialize turns due scheduled task definitions into tickets.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
	"github.com/workshop17/ticketing-engine/internal/repository"
)

// TicketMaterializer creates one ticket per assignee (dispatch mode "all")
// or one ticket per checklist item for that item's assignee ("per_item"),
// and links every created ticket to a run record.
type TicketMaterializer struct {
	tickets repository.TicketRepository
	tasks   repository.ScheduledTaskRepository
	logger  *slog.Logger
}

func NewTicketMaterializer(
	tickets repository.TicketRepository,
	tasks repository.ScheduledTaskRepository,
	logger *slog.Logger,
) *TicketMaterializer {
	return &TicketMaterializer{
		tickets: tickets,
		tasks:   tasks,
		logger:  logger.With("component", "materializer"),
	}
}

func (m *TicketMaterializer) Materialize(ctx context.Context, task *domain.ScheduledTask, now time.Time) (int, error) {
	tpl, err := m.tasks.GetTemplate(ctx, task.TemplateID)
	if err != nil {
		return 0, fmt.Errorf("get template: %w", err)
	}

	run, err := m.tasks.CreateRun(ctx, task.ID, now)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}

	subject := task.Title + " — " + now.Format("Mon 02 Jan")
	body := renderBody(tpl)

	if task.DispatchMode == domain.DispatchPerItem {
		return m.dispatchPerItem(ctx, task, tpl, run, subject, body, now)
	}
	return m.dispatchAll(ctx, task, run, subject, body, now)
}

func (m *TicketMaterializer) dispatchAll(
	ctx context.Context,
	task *domain.ScheduledTask,
	run *domain.TaskRun,
	subject, body string,
	now time.Time,
) (int, error) {
	assignees, err := m.tasks.ListAssignees(ctx, task.ID)
	if err != nil {
		return 0, fmt.Errorf("list assignees: %w", err)
	}

	created := 0
	for _, userID := range assignees {
		if err := m.createAndLink(ctx, task, run, subject, body, userID, nil, now); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (m *TicketMaterializer) dispatchPerItem(
	ctx context.Context,
	task *domain.ScheduledTask,
	tpl *domain.TaskTemplate,
	run *domain.TaskRun,
	subject, body string,
	now time.Time,
) (int, error) {
	itemAssignees, err := m.tasks.ListItemAssignees(ctx, task.ID)
	if err != nil {
		return 0, fmt.Errorf("list item assignees: %w", err)
	}

	created := 0
	for _, item := range tpl.Items {
		userID, ok := itemAssignees[item.ID]
		if !ok || userID == "" {
			continue // unassigned items produce no ticket
		}
		itemID := item.ID
		itemSubject := subject + " • " + item.Text
		if err := m.createAndLink(ctx, task, run, itemSubject, body, userID, &itemID, now); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (m *TicketMaterializer) createAndLink(
	ctx context.Context,
	task *domain.ScheduledTask,
	run *domain.TaskRun,
	subject, body, userID string,
	itemID *string,
	now time.Time,
) error {
	started := now
	ticket, err := m.tickets.Create(ctx, &domain.Ticket{
		Subject:      subject,
		Description:  body,
		Status:       domain.StatusOpen,
		Priority:     domain.PriorityMedium,
		AgentID:      &userID,
		CreatedBy:    task.CreatedBy,
		SLAStartedAt: &started, // created Open, so the SLA runs from now
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("create ticket for %s: %w", userID, err)
	}
	if err := m.tasks.LinkRunTicket(ctx, run.ID, ticket.ID, userID, itemID); err != nil {
		return fmt.Errorf("link run ticket: %w", err)
	}
	return nil
}

func renderBody(tpl *domain.TaskTemplate) string {
	var b strings.Builder
	if tpl.Description != "" {
		b.WriteString(tpl.Description)
		b.WriteString("\n\n")
	}
	if len(tpl.Items) > 0 {
		b.WriteString("Checklist:\n")
		for _, item := range tpl.Items {
			b.WriteString("- [ ] ")
			b.WriteString(item.Text)
			if item.Required {
				b.WriteString(" (required)")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
