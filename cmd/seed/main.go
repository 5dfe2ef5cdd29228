// seed inserts demo SLA settings, an agent chain, a checklist template and
// two scheduled tasks into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/workshop17/ticketing-engine/internal/infrastructure/postgres"
)

var slaSettings = []struct {
	priority string
	hours    float64
}{
	{"Critical", 2},
	{"High", 4},
	{"Medium", 12},
	{"Low", 24},
}

var users = []struct {
	email   string
	manager string // email of the manager, resolved after insert
}{
	{"director@seed.local", ""},
	{"manager@seed.local", "director@seed.local"},
	{"agent-one@seed.local", "manager@seed.local"},
	{"agent-two@seed.local", "manager@seed.local"},
}

var templateItems = []struct {
	text     string
	required bool
}{
	{"Check meeting room AV", true},
	{"Restock printer paper", true},
	{"Walk the floor for hazards", false},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// SLA thresholds
	for _, s := range slaSettings {
		_, err := pool.Exec(ctx, `
			INSERT INTO sla_settings (priority, resolution_hours)
			VALUES ($1, $2)
			ON CONFLICT (priority) DO UPDATE SET resolution_hours = EXCLUDED.resolution_hours`,
			s.priority, s.hours,
		)
		if err != nil {
			log.Fatalf("upsert sla setting %s: %v", s.priority, err)
		}
	}

	// Users, then the reporting chain in a second pass so managers exist
	ids := make(map[string]string, len(users))
	for _, u := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (email)
			VALUES ($1)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			u.email,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert user %s: %v", u.email, err)
		}
		ids[u.email] = id
	}
	for _, u := range users {
		if u.manager == "" {
			continue
		}
		if _, err := pool.Exec(ctx,
			`UPDATE users SET manager_id = $2 WHERE id = $1`,
			ids[u.email], ids[u.manager],
		); err != nil {
			log.Fatalf("set manager for %s: %v", u.email, err)
		}
	}

	// Checklist template
	var templateID string
	err = pool.QueryRow(ctx, `
		INSERT INTO task_templates (name, description)
		VALUES ('Morning facilities round', 'Daily walkthrough of the office before opening.')
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`,
	).Scan(&templateID)
	if err != nil {
		log.Fatalf("upsert template: %v", err)
	}

	var itemIDs []string
	for i, item := range templateItems {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO task_template_items (template_id, text, required, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (template_id, text) DO UPDATE SET required = EXCLUDED.required
			RETURNING id`,
			templateID, item.text, item.required, i,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert template item %q: %v", item.text, err)
		}
		itemIDs = append(itemIDs, id)
	}

	// A daily task fanning out to both agents, due immediately
	nextRun := time.Now().Add(time.Minute)
	var dailyID string
	err = pool.QueryRow(ctx, `
		INSERT INTO scheduled_tasks (
			title, template_id, schedule_type, start_date, timezone,
			dispatch_mode, next_run_at, active, created_by
		) VALUES ('Morning round', $1, 'daily', CURRENT_DATE, 'Africa/Johannesburg', 'all', $2, true, $3)
		ON CONFLICT (title) DO UPDATE SET next_run_at = EXCLUDED.next_run_at, active = true
		RETURNING id`,
		templateID, nextRun, ids["manager@seed.local"],
	).Scan(&dailyID)
	if err != nil {
		log.Fatalf("upsert daily task: %v", err)
	}
	for _, email := range []string{"agent-one@seed.local", "agent-two@seed.local"} {
		if _, err := pool.Exec(ctx, `
			INSERT INTO scheduled_task_assignees (task_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			dailyID, ids[email],
		); err != nil {
			log.Fatalf("assign %s: %v", email, err)
		}
	}

	// A weekly per-item task: each checklist item goes to its own agent
	var weeklyID string
	err = pool.QueryRow(ctx, `
		INSERT INTO scheduled_tasks (
			title, template_id, schedule_type, by_day, start_date, timezone,
			dispatch_mode, next_run_at, active, created_by
		) VALUES ('Weekly deep check', $1, 'weekly', 'MO,TH', CURRENT_DATE, 'Africa/Johannesburg', 'per_item', $2, true, $3)
		ON CONFLICT (title) DO UPDATE SET next_run_at = EXCLUDED.next_run_at, active = true
		RETURNING id`,
		templateID, nextRun, ids["manager@seed.local"],
	).Scan(&weeklyID)
	if err != nil {
		log.Fatalf("upsert weekly task: %v", err)
	}
	agents := []string{"agent-one@seed.local", "agent-two@seed.local", "agent-one@seed.local"}
	for i, itemID := range itemIDs {
		if _, err := pool.Exec(ctx, `
			INSERT INTO scheduled_task_item_assignees (task_id, item_id, user_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (task_id, item_id) DO UPDATE SET user_id = EXCLUDED.user_id`,
			weeklyID, itemID, ids[agents[i]],
		); err != nil {
			log.Fatalf("assign item %s: %v", itemID, err)
		}
	}

	// One Pending ticket whose hold has already elapsed, and one Open
	// Critical ticket breaching its SLA; the next pass acts on both.
	agentOne := ids["agent-one@seed.local"]
	_, err = pool.Exec(ctx, `
		INSERT INTO tickets (
			ticket_number, subject, status, priority, queue, agent_id,
			pending_until, sla_started_at, sla_paused_started_at, created_by
		) VALUES (
			to_char(now(), 'YYYYMMDD') || '-' || lpad(nextval('ticket_number_seq')::text, 4, '0'),
			'Seed: waiting on customer', 'Pending', 'Medium', 'Support', $1,
			now() - interval '5 minutes', now() - interval '2 days', now() - interval '1 day', $1
		)`,
		agentOne,
	)
	if err != nil {
		log.Fatalf("insert pending ticket: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO tickets (
			ticket_number, subject, status, priority, queue, agent_id,
			sla_started_at, created_by
		) VALUES (
			to_char(now(), 'YYYYMMDD') || '-' || lpad(nextval('ticket_number_seq')::text, 4, '0'),
			'Seed: server room too warm', 'Open', 'Critical', 'Facilities', $1,
			now() - interval '3 days', $1
		)`,
		agentOne,
	)
	if err != nil {
		log.Fatalf("insert open ticket: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users:          %d (agent-one reports to manager reports to director)\n", len(users))
	fmt.Printf("  Template:       %s (%d items)\n", templateID, len(itemIDs))
	fmt.Printf("  Daily task:     %s (dispatch all, next run %s)\n", dailyID, nextRun.Format(time.RFC3339))
	fmt.Printf("  Weekly task:    %s (dispatch per_item, MO/TH)\n", weeklyID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Trigger a pass by hand:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/housekeeping/run \\")
	fmt.Println("      -H \"Authorization: Bearer $OPS_TOKEN\"")
	fmt.Println()
	fmt.Println("  What to expect:")
	fmt.Println("    the Pending seed ticket re-opens (its hold elapsed 5 minutes ago)")
	fmt.Println("    the Critical seed ticket escalates to level 2 (3 days > 2h + 2h)")
	fmt.Println("    both scheduled tasks fire once and advance their next_run_at")
}
