// Package housekeeping runs the periodic ticket maintenance pass: reopen
// elapsed pending holds, escalate SLA breaches, and fire due scheduled
// tasks. Each candidate is processed independently; a failure on one never
// aborts the pass, and the next pass is the retry mechanism.
package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
	"github.com/workshop17/ticketing-engine/internal/metrics"
	"github.com/workshop17/ticketing-engine/internal/notify"
	"github.com/workshop17/ticketing-engine/internal/passid"
	"github.com/workshop17/ticketing-engine/internal/recurrence"
	"github.com/workshop17/ticketing-engine/internal/repository"
	"github.com/workshop17/ticketing-engine/internal/sla"
)

// ErrPassInProgress is returned when a pass is requested while another is
// still running. Passes read-modify-write SLA fields, so overlap is never
// allowed.
var ErrPassInProgress = errors.New("housekeeping pass already in progress")

// Materializer turns one due scheduled task into its downstream artifacts
// (tickets, run records) and reports how many tickets it created. The
// runner only advances next_run_at after a successful materialization.
type Materializer interface {
	Materialize(ctx context.Context, task *domain.ScheduledTask, now time.Time) (int, error)
}

// ItemError records one failed candidate within a pass.
type ItemError struct {
	Step string // "reopen", "escalate", "advance"
	ID   string // ticket or task ID
	Err  error
}

// PassResult summarizes one housekeeping pass.
type PassResult struct {
	PassID     string
	StartedAt  time.Time
	Duration   time.Duration
	Reopened   int
	Escalated  int
	TasksFired int
	Errors     []ItemError
}

type Runner struct {
	tickets      repository.TicketRepository
	tasks        repository.ScheduledTaskRepository
	users        repository.UserRepository
	clock        *sla.Clock
	engine       *sla.Engine
	materializer Materializer
	notifier     notify.Notifier
	logger       *slog.Logger

	mu  sync.Mutex       // single-flight guard
	now func() time.Time // injectable for tests

	lastMu sync.Mutex
	last   *PassResult
}

func NewRunner(
	tickets repository.TicketRepository,
	tasks repository.ScheduledTaskRepository,
	users repository.UserRepository,
	clock *sla.Clock,
	engine *sla.Engine,
	materializer Materializer,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		tickets:      tickets,
		tasks:        tasks,
		users:        users,
		clock:        clock,
		engine:       engine,
		materializer: materializer,
		notifier:     notifier,
		logger:       logger.With("component", "housekeeping"),
		now:          time.Now,
	}
}

// RunPass executes one full pass: pending expiry, SLA escalation, then due
// scheduled tasks, in that order for audit readability. Returns
// ErrPassInProgress when another pass holds the lock.
func (r *Runner) RunPass(ctx context.Context) (PassResult, error) {
	if !r.mu.TryLock() {
		metrics.PassSkippedTotal.Inc()
		return PassResult{}, ErrPassInProgress
	}
	defer r.mu.Unlock()

	id := passid.New()
	ctx = passid.WithPassID(ctx, id)

	started := r.now()
	wallStart := time.Now()
	metrics.LastPassStartTime.SetToCurrentTime()

	res := PassResult{PassID: id, StartedAt: started}
	r.reopenExpired(ctx, &res)
	r.escalateOpen(ctx, &res)
	r.advanceDue(ctx, &res)

	res.Duration = time.Since(wallStart)
	metrics.PassDuration.Observe(res.Duration.Seconds())
	outcome := "ok"
	if len(res.Errors) > 0 {
		outcome = "errors"
	}
	metrics.PassesTotal.WithLabelValues(outcome).Inc()

	r.logger.Info("pass complete",
		"reopened", res.Reopened,
		"escalated", res.Escalated,
		"tasks_fired", res.TasksFired,
		"errors", len(res.Errors),
		"duration", res.Duration,
	)

	r.lastMu.Lock()
	r.last = &res
	r.lastMu.Unlock()
	return res, nil
}

// LastResult returns the most recent completed pass, if any.
func (r *Runner) LastResult() (PassResult, bool) {
	r.lastMu.Lock()
	defer r.lastMu.Unlock()
	if r.last == nil {
		return PassResult{}, false
	}
	return *r.last, true
}

// reopenExpired flips Pending tickets whose hold has elapsed back to Open.
func (r *Runner) reopenExpired(ctx context.Context, res *PassResult) {
	asOf := r.now()
	due, err := r.tickets.ListPendingExpired(ctx, asOf)
	if err != nil {
		r.fail(res, "reopen", "", fmt.Errorf("list pending expired: %w", err))
		return
	}

	for _, t := range due {
		if err := r.reopenOne(ctx, t, asOf); err != nil {
			r.fail(res, "reopen", t.ID, err)
			continue
		}
		res.Reopened++
		metrics.ReopenedTotal.Inc()
	}
}

func (r *Runner) reopenOne(ctx context.Context, t *domain.Ticket, now time.Time) error {
	flipped, err := r.tickets.Reopen(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	if !flipped {
		// Someone else got there first; nothing more to do.
		return nil
	}

	// Close the pause that ran while the ticket sat in Pending.
	r.clock.ApplyStatusChange(t, domain.StatusOpen, now)
	if err := r.tickets.UpdateSLAFields(ctx, t); err != nil {
		return fmt.Errorf("update sla fields: %w", err)
	}

	if err := r.tickets.AppendLog(ctx, domain.TicketLog{
		TicketID: t.ID,
		Action:   domain.LogActionStatus,
		Meta:     map[string]any{"from": "Pending", "to": "Open", "reason": "pending_elapsed"},
	}); err != nil {
		r.logger.Warn("append reopen log", "ticket_id", t.ID, "error", err)
	}

	r.notifyReopened(ctx, t)
	return nil
}

func (r *Runner) notifyReopened(ctx context.Context, t *domain.Ticket) {
	if t.AgentID == nil {
		return
	}
	email, err := r.users.GetEmail(ctx, *t.AgentID)
	if err != nil || email == "" {
		if err != nil {
			r.logger.Warn("resolve agent email", "ticket_id", t.ID, "error", err)
		}
		return
	}

	err = r.notifier.Notify(ctx, notify.Event{
		Kind:         notify.KindReopened,
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		Subject:      t.Subject,
		Queue:        t.Queue,
		Priority:     t.Priority,
		Recipients:   []string{email},
	})
	if err != nil {
		r.logger.Warn("reopen notification", "ticket_id", t.ID, "error", err)
	}
}

// escalateOpen evaluates every Open ticket with a running SLA and records
// any newly crossed breach threshold.
func (r *Runner) escalateOpen(ctx context.Context, res *PassResult) {
	asOf := r.now()
	open, err := r.tickets.ListOpenWithSLARunning(ctx)
	if err != nil {
		r.fail(res, "escalate", "", fmt.Errorf("list open tickets: %w", err))
		return
	}

	for _, t := range open {
		esc, due := r.engine.Evaluate(t, asOf)
		if !due {
			continue
		}
		if err := r.escalateOne(ctx, t, esc, asOf); err != nil {
			r.fail(res, "escalate", t.ID, err)
			continue
		}
		res.Escalated++
		metrics.EscalationsTotal.WithLabelValues(strconv.Itoa(esc.Level)).Inc()
	}
}

func (r *Runner) escalateOne(ctx context.Context, t *domain.Ticket, esc sla.Escalation, now time.Time) error {
	// Record first: the guarded write is what makes re-runs safe. A lost
	// notification is recoverable; a double escalation is not.
	if err := r.tickets.RecordEscalation(ctx, t.ID, esc.Level, now); err != nil {
		return fmt.Errorf("record escalation: %w", err)
	}

	if err := r.tickets.AppendLog(ctx, domain.TicketLog{
		TicketID: t.ID,
		Action:   domain.LogActionOther,
		Meta:     map[string]any{"sla_escalation_level": esc.Level, "elapsed_seconds": esc.ElapsedSeconds},
	}); err != nil {
		r.logger.Warn("append escalation log", "ticket_id", t.ID, "error", err)
	}

	recipients := r.escalationRecipients(ctx, t, esc.Level)
	if len(recipients) == 0 {
		return nil
	}

	err := r.notifier.Notify(ctx, notify.Event{
		Kind:         notify.KindEscalated,
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		Subject:      t.Subject,
		Queue:        t.Queue,
		Priority:     t.Priority,
		Level:        esc.Level,
		ElapsedHours: float64(esc.ElapsedSeconds) / 3600,
		OverHours:    float64(esc.OverSeconds) / 3600,
		Recipients:   recipients,
	})
	if err != nil {
		r.logger.Warn("escalation notification", "ticket_id", t.ID, "level", esc.Level, "error", err)
	}
	return nil
}

// escalationRecipients resolves the reporting chain; a missing manager
// tier just narrows the audience, it never blocks the escalation.
func (r *Runner) escalationRecipients(ctx context.Context, t *domain.Ticket, level int) []string {
	if t.AgentID == nil {
		return nil
	}
	chain, err := r.users.ManagerChain(ctx, *t.AgentID)
	if err != nil {
		r.logger.Warn("resolve reporting chain", "ticket_id", t.ID, "agent_id", *t.AgentID, "error", err)
		return nil
	}
	return chain.Recipients(level)
}

// advanceDue materializes every due scheduled task and, only on success,
// advances its next occurrence (seeded from tomorrow so even daily
// schedules always move forward).
func (r *Runner) advanceDue(ctx context.Context, res *PassResult) {
	asOf := r.now()
	due, err := r.tasks.ListDue(ctx, asOf)
	if err != nil {
		r.fail(res, "advance", "", fmt.Errorf("list due tasks: %w", err))
		return
	}

	for _, task := range due {
		created, err := r.materializer.Materialize(ctx, task, asOf)
		if err != nil {
			// next_run_at stays put; the task fires again next pass.
			r.fail(res, "advance", task.ID, fmt.Errorf("materialize: %w", err))
			continue
		}

		var next *time.Time
		if n, ok := recurrence.NextRunAfterFire(task, asOf); ok {
			next = &n
		} else {
			r.logger.Warn("no future occurrence in look-ahead window, task parked",
				"task_id", task.ID, "schedule_type", task.ScheduleType)
		}
		if err := r.tasks.UpdateNextRun(ctx, task.ID, next, asOf); err != nil {
			r.fail(res, "advance", task.ID, fmt.Errorf("update next run: %w", err))
			continue
		}

		res.TasksFired++
		metrics.TasksFiredTotal.Inc()
		r.logger.Info("scheduled task fired",
			"task_id", task.ID, "title", task.Title, "tickets_created", created)
	}
}

func (r *Runner) fail(res *PassResult, step, id string, err error) {
	res.Errors = append(res.Errors, ItemError{Step: step, ID: id, Err: err})
	metrics.ItemErrorsTotal.WithLabelValues(step).Inc()
	r.logger.Error("housekeeping item failed", "step", step, "id", id, "error", err)
}
