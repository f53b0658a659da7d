package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/agent/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresAgentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &postgresAgentRepository{
		pool: pool,
	}
}

func (r *postgresAgentRepository) GetByID(ctx context.Context, agentID uuid.UUID) (*model.Agent, error) {
	query := `
		SELECT
			id, full_name, phone, email, status,
			total_jobs, completed_jobs, total_earnings, wallet_balance,
			created_at, updated_at
		FROM agents
		WHERE id = $1
	`

	var a model.Agent
	err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&a.ID,
		&a.FullName,
		&a.Phone,
		&a.Email,
		&a.Status,
		&a.TotalJobs,
		&a.CompletedJobs,
		&a.TotalEarnings,
		&a.WalletBalance,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return &a, nil
}

// CreditEarningsWithTx inserts into the ledger first; the booking_id
// primary key is what makes the credit idempotent. Counters are only
// incremented when the ledger row was actually inserted.
func (r *postgresAgentRepository) CreditEarningsWithTx(ctx context.Context, tx pgx.Tx, agentID, bookingID uuid.UUID, amount decimal.Decimal) (bool, error) {
	ledgerQuery := `
		INSERT INTO agent_earnings (booking_id, agent_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (booking_id) DO NOTHING
	`

	result, err := tx.Exec(ctx, ledgerQuery, bookingID, agentID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to record agent earning: %w", err)
	}

	if result.RowsAffected() == 0 {
		// already credited for this booking
		return false, nil
	}

	counterQuery := `
		UPDATE agents
		SET total_jobs = total_jobs + 1,
			completed_jobs = completed_jobs + 1,
			total_earnings = total_earnings + $1,
			wallet_balance = wallet_balance + $1,
			updated_at = NOW()
		WHERE id = $2
	`

	if _, err := tx.Exec(ctx, counterQuery, amount, agentID); err != nil {
		return false, fmt.Errorf("failed to update agent counters: %w", err)
	}

	return true, nil
}
