package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workshop17/ticketing-engine/internal/domain"
)

type SLASettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSLASettingsRepository(pool *pgxpool.Pool) *SLASettingsRepository {
	return &SLASettingsRepository{pool: pool}
}

func (r *SLASettingsRepository) LoadThresholds(ctx context.Context) (map[domain.TicketPriority]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT priority, resolution_hours FROM sla_settings`)
	if err != nil {
		return nil, fmt.Errorf("load sla settings: %w", err)
	}
	defer rows.Close()

	thresholds := make(map[domain.TicketPriority]float64)
	for rows.Next() {
		var priority domain.TicketPriority
		var hours float64
		if err := rows.Scan(&priority, &hours); err != nil {
			return nil, fmt.Errorf("scan sla setting: %w", err)
		}
		thresholds[priority] = hours
	}
	return thresholds, rows.Err()
}
