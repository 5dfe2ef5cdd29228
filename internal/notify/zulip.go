package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ZulipNotifier sends private messages through the Zulip bot API. The
// messages API takes a form-encoded POST with HTTP Basic auth, one call
// per recipient.
type ZulipNotifier struct {
	site       string
	botEmail   string
	apiKey     string
	appBaseURL string
	client     *http.Client
}

func NewZulipNotifier(site, botEmail, apiKey, appBaseURL string) *ZulipNotifier {
	return &ZulipNotifier{
		site:       strings.TrimRight(site, "/"),
		botEmail:   botEmail,
		apiKey:     apiKey,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *ZulipNotifier) Notify(ctx context.Context, ev Event) error {
	content := n.render(ev)
	var errCount int
	var firstErr error
	for _, recipient := range ev.Recipients {
		if err := n.sendPM(ctx, recipient, content); err != nil {
			errCount++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return fmt.Errorf("zulip: %d of %d sends failed: %w", errCount, len(ev.Recipients), firstErr)
	}
	return nil
}

func (n *ZulipNotifier) render(ev Event) string {
	link := ""
	if n.appBaseURL != "" {
		link = fmt.Sprintf("\n[Open in Ticketing](%s/tickets#t%s)", n.appBaseURL, ev.TicketID)
	}
	subject := ev.Subject
	if subject == "" {
		subject = "Ticket"
	}

	switch ev.Kind {
	case KindEscalated:
		return fmt.Sprintf(
			"⏱️ SLA **breach level %d** for ticket **%s** — *%s*.\nPriority: `%s` | Elapsed business time: **%.2fh** | Over by **%.2fh**%s",
			ev.Level, ev.TicketNumber, subject, ev.Priority, ev.ElapsedHours, ev.OverHours, link,
		)
	default:
		return fmt.Sprintf(
			"Ticket **%s** — *%s* has **re-opened** (pending timer elapsed).\nQueue: `%s`  |  Priority: `%s`%s",
			ev.TicketNumber, subject, ev.Queue, ev.Priority, link,
		)
	}
}

func (n *ZulipNotifier) sendPM(ctx context.Context, toEmail, content string) error {
	to, err := json.Marshal([]string{toEmail})
	if err != nil {
		return fmt.Errorf("encode recipient: %w", err)
	}

	form := url.Values{}
	form.Set("type", "private")
	form.Set("to", string(to))
	form.Set("content", content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.site+"/api/v1/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(n.botEmail, n.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send pm: unexpected status %d", resp.StatusCode)
	}
	return nil
}
