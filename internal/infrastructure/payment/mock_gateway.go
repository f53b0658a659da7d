package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Gateway is the intent/confirm contract consumed from the payment
// provider; the provider SDK itself is outside this core.
type Gateway interface {
	CreateIntent(ctx context.Context, bookingRef string, amount decimal.Decimal) (intentID string, err error)
	Confirm(ctx context.Context, intentID string) error
}

// ================================================
// MOCK GATEWAY (for development)
// ================================================

type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) CreateIntent(ctx context.Context, bookingRef string, amount decimal.Decimal) (string, error) {
	intentID := fmt.Sprintf("mock-intent-%d", time.Now().UnixNano())

	log.Info().
		Str("booking_ref", bookingRef).
		Str("amount", amount.String()).
		Str("intent_id", intentID).
		Msg("[MOCK] Payment intent created")

	return intentID, nil
}

func (g *MockGateway) Confirm(ctx context.Context, intentID string) error {
	log.Info().
		Str("intent_id", intentID).
		Msg("[MOCK] Payment intent confirmed")

	return nil
}
