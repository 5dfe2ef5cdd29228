package repository

import (
	"context"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

// ReportingChain holds the notification tiers for an escalation. Missing
// tiers are empty strings and are simply skipped; an agent without a
// manager still notifies the agent.
type ReportingChain struct {
	Agent          string
	Manager        string
	ManagerManager string
}

// Recipients flattens the chain to the addresses notified at level. The
// manager's manager only joins at level 2.
func (c ReportingChain) Recipients(level int) []string {
	var out []string
	seen := make(map[string]bool, 3)
	add := func(email string) {
		if email != "" && !seen[email] {
			seen[email] = true
			out = append(out, email)
		}
	}
	add(c.Agent)
	add(c.Manager)
	if level >= 2 {
		add(c.ManagerManager)
	}
	return out
}

type UserRepository interface {
	// GetEmail resolves a user's email address.
	GetEmail(ctx context.Context, userID string) (string, error)

	// ManagerChain walks the org chart up to two levels from the agent.
	ManagerChain(ctx context.Context, agentID string) (ReportingChain, error)
}

// SLASettingsRepository loads deployment-tuned SLA thresholds; callers fall
// back to the shipped defaults when the load fails.
type SLASettingsRepository interface {
	LoadThresholds(ctx context.Context) (map[domain.TicketPriority]float64, error) // priority -> resolution hours
}
