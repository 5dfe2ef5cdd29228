package domain

import (
	"errors"
	"time"
)

var (
	ErrTaskNotFound     = errors.New("scheduled task not found")
	ErrTemplateNotFound = errors.New("task template not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUserNotFound     = errors.New("user not found")
)

type ScheduleType string

const (
	ScheduleDaily     ScheduleType = "daily"
	ScheduleWeekly    ScheduleType = "weekly"
	ScheduleBiweekly  ScheduleType = "biweekly"
	ScheduleMonthly   ScheduleType = "monthly"
	ScheduleBimonthly ScheduleType = "bimonthly"
)

// DispatchMode controls how a due task fans out into tickets:
// one ticket per assignee, or one ticket per checklist item.
type DispatchMode string

const (
	DispatchAll     DispatchMode = "all"
	DispatchPerItem DispatchMode = "per_item"
)

// ScheduledTask is a recurring task definition. NextRunAt is the cached
// next occurrence; it is recomputed on every edit and after every run.
type ScheduledTask struct {
	ID           string
	Title        string
	TemplateID   string
	ScheduleType ScheduleType
	ByDay        []string // MO..SU, weekly/biweekly only
	DayOfMonth   int      // 1..31, monthly/bimonthly only
	StartDate    time.Time
	Timezone     string // IANA zone name
	DispatchMode DispatchMode
	NextRunAt    *time.Time
	LastRunAt    *time.Time
	Active       bool
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TaskTemplate struct {
	ID          string
	Name        string
	Description string
	Items       []TemplateItem
}

type TemplateItem struct {
	ID       string
	Text     string
	Required bool
}

// TaskRun records one materialization of a due task.
type TaskRun struct {
	ID      string
	TaskID  string
	RunDate time.Time
}
