package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// BOOKING STATUS
// =====================================================

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusOnTheWay   BookingStatus = "on_the_way"
	BookingStatusArrived    BookingStatus = "arrived"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusOnTheWay,
		BookingStatusArrived, BookingStatusInProgress, BookingStatusCompleted,
		BookingStatusCancelled:
		return true
	}
	return false
}

func (bs BookingStatus) String() string {
	return string(bs)
}

// IsTerminal reports whether no further transitions are allowed
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusCompleted || bs == BookingStatusCancelled
}

// =====================================================
// PAYMENT STATUS / METHOD
// =====================================================

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusPartial  PaymentStatus = "partial"
)

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusPartial:
		return true
	}
	return false
}

func (ps PaymentStatus) String() string {
	return string(ps)
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}

func (pm PaymentMethod) String() string {
	return string(pm)
}

// =====================================================
// ACTOR
// =====================================================

// Actor identifies who is requesting a state change.
// Authorization rules differ per actor, the transition graph does not.
type Actor struct {
	ID   uuid.UUID
	Role ActorRole
}

type ActorRole string

const (
	ActorCustomer ActorRole = "customer"
	ActorAgent    ActorRole = "agent"
	ActorAdmin    ActorRole = "admin"
	ActorSystem   ActorRole = "system"
)

// =====================================================
// TIMELINE
// =====================================================

// TimelineEntry is a single append-only audit record of a status change
type TimelineEntry struct {
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Note      string        `json:"note"`
}

// Timeline is the ordered audit log of a booking. Insertion order is
// significant; entries are never reordered or truncated.
type Timeline []TimelineEntry

// Value implements driver.Valuer for JSONB
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal(Timeline{})
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB
func (t *Timeline) Scan(value interface{}) error {
	if value == nil {
		*t = Timeline{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrInvalidTimeline
	}

	return json.Unmarshal(bytes, t)
}

// Last returns the most recent entry, or nil for an empty timeline
func (t Timeline) Last() *TimelineEntry {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// =====================================================
// ENTITY: Booking
// =====================================================

// Booking is the aggregate root for a single service request.
// The record is never hard-deleted; cancellation is a terminal status.
type Booking struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`

	// Parties
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty" db:"agent_id"`
	AgentName  *string    `json:"agent_name,omitempty" db:"agent_name"`
	ServiceID  uuid.UUID  `json:"service_id" db:"service_id"`

	// Commerce
	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	Tax        decimal.Decimal `json:"tax" db:"tax"`
	Total      decimal.Decimal `json:"total" db:"total"`
	CouponCode *string         `json:"coupon_code,omitempty" db:"coupon_code"`

	PaymentMethod string `json:"payment_method" db:"payment_method"`
	PaymentStatus string `json:"payment_status" db:"payment_status"`

	// Lifecycle
	Status   string   `json:"status" db:"status"`
	Timeline Timeline `json:"timeline" db:"timeline"`

	// Notes
	CustomerNote *string `json:"customer_note,omitempty" db:"customer_note"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// validTransitions is the closed transition graph. Anything not listed
// here fails with ErrInvalidTransition and leaves the record untouched.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusAccepted,
		BookingStatusCancelled,
	},
	BookingStatusAccepted: {
		BookingStatusOnTheWay,
		BookingStatusCancelled,
	},
	BookingStatusOnTheWay: {
		BookingStatusArrived,
		BookingStatusCancelled,
	},
	BookingStatusArrived: {
		BookingStatusInProgress,
		BookingStatusCancelled,
	},
	BookingStatusInProgress: {
		BookingStatusCompleted,
		BookingStatusCancelled,
	},
	// completed and cancelled are terminal
}

// CanTransitionTo checks the transition graph from the booking's current status
func (b *Booking) CanTransitionTo(newStatus BookingStatus) bool {
	allowed, exists := validTransitions[BookingStatus(b.Status)]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}

	return false
}

// IsCancellableByCustomer checks the customer-initiated cancellation window.
// Once the agent is en route or later, cancellation needs the elevated path.
func (b *Booking) IsCancellableByCustomer() bool {
	return b.Status == string(BookingStatusPending) ||
		b.Status == string(BookingStatusAccepted)
}

// IsAssignable reports whether an agent can be bound or re-bound.
// Binding is only allowed before the agent has begun work.
func (b *Booking) IsAssignable() bool {
	return b.Status == string(BookingStatusPending) ||
		b.Status == string(BookingStatusAccepted)
}

// HasAgent reports whether an agent is currently bound
func (b *Booking) HasAgent() bool {
	return b.AgentID != nil
}

// CalculateTotal computes subtotal - discount + tax, clamped to >= 0
func (b *Booking) CalculateTotal() decimal.Decimal {
	total := b.Subtotal.Sub(b.Discount).Add(b.Tax)
	if total.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return total
}

// Validate checks the booking's financial and lifecycle invariants
func (b *Booking) Validate() error {
	if !BookingStatus(b.Status).IsValid() {
		return ErrInvalidStatus
	}

	if !PaymentStatus(b.PaymentStatus).IsValid() {
		return ErrInvalidPaymentStatus
	}

	if !PaymentMethod(b.PaymentMethod).IsValid() {
		return ErrInvalidPaymentMethod
	}

	if b.Subtotal.LessThan(decimal.Zero) {
		return ErrInvalidSubtotal
	}

	if b.Discount.LessThan(decimal.Zero) || b.Discount.GreaterThan(b.Subtotal) {
		return ErrInvalidDiscount
	}

	if b.Tax.LessThan(decimal.Zero) {
		return ErrInvalidTax
	}

	if !b.Total.Equal(b.CalculateTotal()) {
		return ErrTotalMismatch
	}

	// status must mirror the newest timeline entry
	last := b.Timeline.Last()
	if last == nil || string(last.Status) != b.Status {
		return ErrTimelineOutOfSync
	}

	return nil
}
