package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/agent/model"
)

// =====================================================
// AGENT REPOSITORY INTERFACE
// =====================================================
type AgentRepository interface {
	GetByID(ctx context.Context, agentID uuid.UUID) (*model.Agent, error)

	// CreditEarningsWithTx applies the completion side-effect: record the
	// booking in the earnings ledger and bump the running counters.
	// Returns false without touching the counters when the booking was
	// already credited, so retried completions cannot double-credit.
	CreditEarningsWithTx(ctx context.Context, tx pgx.Tx, agentID, bookingID uuid.UUID, amount decimal.Decimal) (bool, error)
}
