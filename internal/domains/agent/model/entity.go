package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentStatus represents the employment status of a field agent
type AgentStatus string

const (
	AgentStatusActive    AgentStatus = "active"
	AgentStatusInactive  AgentStatus = "inactive"
	AgentStatusSuspended AgentStatus = "suspended"
)

func (as AgentStatus) IsValid() bool {
	switch as {
	case AgentStatusActive, AgentStatusInactive, AgentStatusSuspended:
		return true
	}
	return false
}

func (as AgentStatus) String() string {
	return string(as)
}

// Agent is the field worker who fulfils bookings. The running counters are
// mutated only as a side-effect of booking completion, through the
// earnings ledger.
type Agent struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FullName string    `json:"full_name" db:"full_name"`
	Phone    string    `json:"phone" db:"phone"`
	Email    string    `json:"email" db:"email"`
	Status   string    `json:"status" db:"status"`

	TotalJobs     int             `json:"total_jobs" db:"total_jobs"`
	CompletedJobs int             `json:"completed_jobs" db:"completed_jobs"`
	TotalEarnings decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	WalletBalance decimal.Decimal `json:"wallet_balance" db:"wallet_balance"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the agent may be assigned new bookings
func (a *Agent) IsActive() bool {
	return a.Status == string(AgentStatusActive)
}

// AgentStatsResponse is the agent-facing stats view
type AgentStatsResponse struct {
	TotalJobs     int             `json:"total_jobs"`
	CompletedJobs int             `json:"completed_jobs"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	Online        bool            `json:"online"`
}

var (
	ErrAgentNotFound = errors.New("agent not found")
)

const (
	ErrCodeAgentNotFound = "AGENT_NOT_FOUND"
)
