package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier sends escalation and reopen notices via the Resend API,
// used in staging/production alongside (or instead of) the Zulip channel.
type EmailNotifier struct {
	client *resend.Client
	from   string
}

func NewEmailNotifier(apiKey, from string) *EmailNotifier {
	return &EmailNotifier{client: resend.NewClient(apiKey), from: from}
}

func (n *EmailNotifier) Notify(ctx context.Context, ev Event) error {
	if len(ev.Recipients) == 0 {
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      ev.Recipients,
		Subject: n.subject(ev),
		Html:    n.body(ev),
	}
	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) subject(ev Event) string {
	if ev.Kind == KindEscalated {
		return fmt.Sprintf("[%s] SLA breach level %d", ev.TicketNumber, ev.Level)
	}
	return fmt.Sprintf("[%s] Ticket re-opened", ev.TicketNumber)
}

func (n *EmailNotifier) body(ev Event) string {
	if ev.Kind == KindEscalated {
		return fmt.Sprintf(
			"<p>Ticket <strong>%s</strong> — %s</p><p>Priority: %s<br>Elapsed business time: %.2fh<br>Over by: %.2fh</p>",
			ev.TicketNumber, ev.Subject, ev.Priority, ev.ElapsedHours, ev.OverHours,
		)
	}
	return fmt.Sprintf(
		"<p>Ticket <strong>%s</strong> — %s has re-opened (pending timer elapsed).</p><p>Queue: %s<br>Priority: %s</p>",
		ev.TicketNumber, ev.Subject, ev.Queue, ev.Priority,
	)
}
