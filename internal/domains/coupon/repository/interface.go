package repository

import (
	"context"

	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/coupon/model"
)

// =====================================================
// COUPON REPOSITORY INTERFACE
// =====================================================
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, couponID uuid.UUID) (*model.Coupon, error)
	// GetByCode looks the code up case-insensitively
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]model.Coupon, int, error)
	Deactivate(ctx context.Context, couponID uuid.UUID) error

	// Redeem atomically appends the customer to the ledger (iff absent,
	// when the coupon tracks customers) and increments the usage counter,
	// guarded by the usage limit. Returns false when the conditional
	// update matched no row; the caller re-reads to classify why.
	Redeem(ctx context.Context, couponID, customerID uuid.UUID) (bool, error)
}
