package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// DISCOUNT TYPE / AUDIENCE
// =====================================================

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (dt DiscountType) IsValid() bool {
	return dt == DiscountTypePercentage || dt == DiscountTypeFixed
}

func (dt DiscountType) String() string {
	return string(dt)
}

// Audience scopes who may redeem a coupon
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceSelected Audience = "selected"
)

func (a Audience) IsValid() bool {
	return a == AudienceAll || a == AudienceSelected
}

func (a Audience) String() string {
	return string(a)
}

// =====================================================
// CUSTOMER LIST (JSONB)
// =====================================================

// CustomerList stores customer ids in JSONB, used for both the
// per-customer usage ledger and the audience allow-list
type CustomerList []uuid.UUID

// Value implements driver.Valuer for JSONB
func (cl CustomerList) Value() (driver.Value, error) {
	if cl == nil {
		return nil, nil
	}
	return json.Marshal(cl)
}

// Scan implements sql.Scanner for JSONB
func (cl *CustomerList) Scan(value interface{}) error {
	if value == nil {
		*cl = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrInvalidCustomerList
	}

	return json.Unmarshal(bytes, cl)
}

// Contains checks list membership
func (cl CustomerList) Contains(customerID uuid.UUID) bool {
	for _, id := range cl {
		if id == customerID {
			return true
		}
	}
	return false
}

// =====================================================
// ENTITY: Coupon
// =====================================================

// Coupon is a named discount rule. Codes are stored uppercase and looked
// up case-insensitively. Coupons referenced by historical bookings are
// soft-deactivated, never deleted.
type Coupon struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Code string    `json:"code" db:"code"`

	DiscountType  string          `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`
	MinOrderValue decimal.Decimal `json:"min_order_value" db:"min_order_value"`
	// MaxDiscount caps percentage discounts; zero means uncapped
	MaxDiscount decimal.Decimal `json:"max_discount" db:"max_discount"`

	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`

	UsageLimit *int `json:"usage_limit,omitempty" db:"usage_limit"`
	TimesUsed  int  `json:"times_used" db:"times_used"`

	IsActive bool `json:"is_active" db:"is_active"`

	// UsedByCustomers is the per-customer ledger; nil means the coupon
	// does not track per-customer redemption
	UsedByCustomers CustomerList `json:"used_by_customers,omitempty" db:"used_by_customers"`

	Audience         string       `json:"audience" db:"audience"`
	AllowedCustomers CustomerList `json:"allowed_customers,omitempty" db:"allowed_customers"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExpired checks the expiry date; coupons without one never expire
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && !now.Before(*c.ExpiryDate)
}

// HasUsageLeft checks the global usage limit headroom
func (c *Coupon) HasUsageLeft() bool {
	return c.UsageLimit == nil || c.TimesUsed < *c.UsageLimit
}

// IsEligible checks the audience scope for a customer
func (c *Coupon) IsEligible(customerID uuid.UUID) bool {
	if c.Audience != string(AudienceSelected) {
		return true
	}
	return c.AllowedCustomers.Contains(customerID)
}

// HasUsed checks the per-customer ledger; false when no ledger exists
func (c *Coupon) HasUsed(customerID uuid.UUID) bool {
	if c.UsedByCustomers == nil {
		return false
	}
	return c.UsedByCustomers.Contains(customerID)
}
