// Package notify carries housekeeping events to people. The engine only
// fills in structured fields; each channel decides how to render them.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

type Kind string

const (
	KindReopened  Kind = "reopened"
	KindEscalated Kind = "escalated"
)

// Event is one notification request emitted by the housekeeping runner.
type Event struct {
	Kind         Kind
	TicketID     string
	TicketNumber string
	Subject      string
	Queue        string
	Priority     domain.TicketPriority
	Level        int     // escalated only
	ElapsedHours float64 // escalated only
	OverHours    float64 // escalated only
	Recipients   []string
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the log instead of sending them. Used in
// ENV=local and as the fallback when no channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.logger.Info("notification (local dev)",
		"kind", ev.Kind,
		"ticket", ev.TicketNumber,
		"level", ev.Level,
		"recipients", ev.Recipients,
	)
	return nil
}

// Fanout delivers each event to every channel; one channel failing does not
// stop the others.
type Fanout struct {
	channels []Notifier
}

func NewFanout(channels ...Notifier) *Fanout {
	return &Fanout{channels: channels}
}

func (f *Fanout) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
