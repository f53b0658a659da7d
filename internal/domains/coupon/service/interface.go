package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/coupon/model"
)

// =====================================================
// COUPON SERVICE INTERFACE
// =====================================================
type CouponService interface {
	// Validate checks a code against an order value for a customer and
	// quotes the discount. Read-only; nothing is redeemed.
	Validate(ctx context.Context, code string, orderValue decimal.Decimal, customerID uuid.UUID) (*model.ValidateCouponResponse, error)

	// Redeem consumes one use of the coupon for the customer. Atomic:
	// ledger append and counter increment happen as one store operation.
	Redeem(ctx context.Context, couponID, customerID uuid.UUID) error

	// Admin operations
	CreateCoupon(ctx context.Context, req model.CreateCouponRequest) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, couponID uuid.UUID, req model.UpdateCouponRequest) (*model.Coupon, error)
	DeactivateCoupon(ctx context.Context, couponID uuid.UUID) error
	GetCoupon(ctx context.Context, couponID uuid.UUID) (*model.Coupon, error)
	ListCoupons(ctx context.Context, req model.ListCouponsRequest) (*model.ListCouponsResponse, error)
}
