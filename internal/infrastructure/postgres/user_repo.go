package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workshop17/ticketing-engine/internal/domain"
	"github.com/workshop17/ticketing-engine/internal/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx,
		`SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("get email: %w", err)
	}
	return email, nil
}

func (r *UserRepository) ManagerChain(ctx context.Context, agentID string) (repository.ReportingChain, error) {
	// One round trip: self join two levels up the org chart. Missing tiers
	// come back as empty strings.
	query := `
		SELECT a.email,
		       COALESCE(m.email, ''),
		       COALESCE(mm.email, '')
		FROM users a
		LEFT JOIN users m ON m.id = a.manager_id
		LEFT JOIN users mm ON mm.id = m.manager_id
		WHERE a.id = $1`

	var chain repository.ReportingChain
	err := r.pool.QueryRow(ctx, query, agentID).
		Scan(&chain.Agent, &chain.Manager, &chain.ManagerManager)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ReportingChain{}, domain.ErrUserNotFound
		}
		return repository.ReportingChain{}, fmt.Errorf("manager chain: %w", err)
	}
	return chain, nil
}
