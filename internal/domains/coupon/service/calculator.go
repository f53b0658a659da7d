package service

import (
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/coupon/model"
)

// DiscountCalculator holds the pure discount math, separated from the
// validation pipeline so it can be tested in isolation
type DiscountCalculator struct{}

func NewDiscountCalculator() *DiscountCalculator {
	return &DiscountCalculator{}
}

// Calculate computes the discount for an order value.
//
// percentage: orderValue * value / 100, capped at max_discount when the
// cap is set (> 0).
// fixed: min(value, orderValue) so the discount never exceeds the order.
//
// The result is rounded half-up to 2 decimal places.
func (c *DiscountCalculator) Calculate(coupon *model.Coupon, orderValue decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch model.DiscountType(coupon.DiscountType) {
	case model.DiscountTypePercentage:
		discount = orderValue.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))

		if coupon.MaxDiscount.GreaterThan(decimal.Zero) &&
			discount.GreaterThan(coupon.MaxDiscount) {
			discount = coupon.MaxDiscount
		}

	case model.DiscountTypeFixed:
		discount = coupon.DiscountValue

		if discount.GreaterThan(orderValue) {
			discount = orderValue
		}

	default:
		return decimal.Zero
	}

	return discount.Round(2)
}

// Total returns orderValue - discount, never negative
func (c *DiscountCalculator) Total(orderValue, discount decimal.Decimal) decimal.Decimal {
	total := orderValue.Sub(discount)
	if total.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return total
}
