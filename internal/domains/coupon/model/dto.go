package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nonNegative validates a decimal amount; ozzo's Min does not understand
// decimal.Decimal
func nonNegative(message string) validation.RuleFunc {
	return func(value interface{}) error {
		d, ok := value.(decimal.Decimal)
		if !ok {
			return errors.New(message)
		}
		if d.IsNegative() {
			return errors.New(message)
		}
		return nil
	}
}

// ValidateCouponRequest checks a code against an order value for the
// calling customer (read-only, no redemption)
type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderValue decimal.Decimal `json:"order_value"`
	CustomerID uuid.UUID       `json:"-"` // from JWT, never from the body
}

func (r ValidateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("coupon code is required"),
			validation.Length(3, 50).Error("coupon code must be 3-50 characters"),
		),
		validation.Field(&r.OrderValue,
			validation.Required.Error("order value is required"),
			validation.By(nonNegative("order value must be >= 0")),
		),
	)
}

// NormalizeCode uppercases and trims the code
func (r *ValidateCouponRequest) NormalizeCode() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}

// ValidateCouponResponse is the quote returned to the caller
type ValidateCouponResponse struct {
	CouponID   uuid.UUID       `json:"coupon_id"`
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	OrderValue decimal.Decimal `json:"order_value"`
	Total      decimal.Decimal `json:"total"`
}

// CreateCouponRequest is the admin request to create a coupon
type CreateCouponRequest struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	UsageLimit    *int            `json:"usage_limit,omitempty"`
	// TrackCustomers enables the per-customer ledger
	TrackCustomers   bool        `json:"track_customers"`
	Audience         string      `json:"audience"`
	AllowedCustomers []uuid.UUID `json:"allowed_customers,omitempty"`
}

func (r CreateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("code is required"),
			validation.Length(3, 50).Error("code must be 3-50 characters"),
		),
		validation.Field(&r.DiscountType,
			validation.Required.Error("discount_type is required"),
			validation.In(
				DiscountTypePercentage.String(),
				DiscountTypeFixed.String(),
			).Error("discount_type must be percentage or fixed"),
		),
		validation.Field(&r.DiscountValue,
			validation.Required.Error("discount_value is required"),
			validation.By(nonNegative("discount_value must be >= 0")),
			validation.By(r.checkPercentageBound),
		),
		validation.Field(&r.MinOrderValue,
			validation.By(nonNegative("min_order_value must be >= 0")),
		),
		validation.Field(&r.MaxDiscount,
			validation.By(nonNegative("max_discount must be >= 0")),
		),
		validation.Field(&r.Audience,
			validation.Required.Error("audience is required"),
			validation.In(
				AudienceAll.String(),
				AudienceSelected.String(),
			).Error("audience must be all or selected"),
		),
	)
}

func (r CreateCouponRequest) checkPercentageBound(interface{}) error {
	if r.DiscountType == string(DiscountTypePercentage) &&
		r.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return validation.NewError(
			"validation_percentage_bound",
			"percentage discount cannot exceed 100",
		)
	}
	return nil
}

// NormalizeCode uppercases and trims the code
func (r *CreateCouponRequest) NormalizeCode() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}

// UpdateCouponRequest is a partial admin update; nil fields are untouched
type UpdateCouponRequest struct {
	DiscountValue    *decimal.Decimal `json:"discount_value,omitempty"`
	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty"`
	MaxDiscount      *decimal.Decimal `json:"max_discount,omitempty"`
	ExpiryDate       *time.Time       `json:"expiry_date,omitempty"`
	UsageLimit       *int             `json:"usage_limit,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
	Audience         *string          `json:"audience,omitempty"`
	AllowedCustomers []uuid.UUID      `json:"allowed_customers,omitempty"`
}

func (r UpdateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Audience,
			validation.In(
				AudienceAll.String(),
				AudienceSelected.String(),
			).Error("audience must be all or selected"),
		),
	)
}

// ListCouponsRequest holds admin list pagination
type ListCouponsRequest struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

func (r *ListCouponsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
}

// ListCouponsResponse wraps a page of coupons
type ListCouponsResponse struct {
	Coupons []Coupon `json:"coupons"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Total   int      `json:"total"`
}
