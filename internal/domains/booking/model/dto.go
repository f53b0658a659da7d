package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// notNilUUID rejects the zero uuid; ozzo's Required treats a [16]byte
// array as non-empty even when all bytes are zero
func notNilUUID(message string) validation.RuleFunc {
	return func(value interface{}) error {
		id, ok := value.(uuid.UUID)
		if !ok || id == uuid.Nil {
			return errors.New(message)
		}
		return nil
	}
}

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

// CreateBookingRequest is the customer-facing request to open a booking
type CreateBookingRequest struct {
	ServiceID     uuid.UUID       `json:"service_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	PaymentMethod string          `json:"payment_method"`
	CouponCode    *string         `json:"coupon_code,omitempty"`
	CustomerNote  *string         `json:"customer_note,omitempty"`
}

func (r CreateBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ServiceID,
			validation.By(notNilUUID("service_id is required")),
		),
		validation.Field(&r.Subtotal,
			validation.By(nonNegative("subtotal must be >= 0")),
		),
		validation.Field(&r.Tax,
			validation.By(nonNegative("tax must be >= 0")),
		),
		validation.Field(&r.PaymentMethod,
			validation.Required.Error("payment_method is required"),
			validation.In(
				PaymentMethodCash.String(),
				PaymentMethodCard.String(),
				PaymentMethodWallet.String(),
			).Error("payment_method must be one of cash, card, wallet"),
		),
		validation.Field(&r.CustomerNote,
			validation.Length(0, 500).Error("customer_note must be at most 500 characters"),
		),
	)
}

// NormalizeCoupon uppercases and trims the coupon code, if any
func (r *CreateBookingRequest) NormalizeCoupon() {
	if r.CouponCode == nil {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(*r.CouponCode))
	if code == "" {
		r.CouponCode = nil
		return
	}
	r.CouponCode = &code
}

// TransitionRequest moves a booking to a target status
type TransitionRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

func (r TransitionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("status is required"),
			validation.In(
				BookingStatusAccepted.String(),
				BookingStatusOnTheWay.String(),
				BookingStatusArrived.String(),
				BookingStatusInProgress.String(),
				BookingStatusCompleted.String(),
				BookingStatusCancelled.String(),
			).Error("status is not a valid transition target"),
		),
		validation.Field(&r.Note,
			validation.Length(0, 500).Error("note must be at most 500 characters"),
		),
	)
}

// CancelBookingRequest is the customer-initiated cancellation
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (r CancelBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason,
			validation.Required.Error("reason is required"),
			validation.Length(3, 500).Error("reason must be 3-500 characters"),
		),
	)
}

// AssignAgentRequest binds an agent to a booking (admin)
type AssignAgentRequest struct {
	AgentID uuid.UUID `json:"agent_id"`
}

func (r AssignAgentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AgentID,
			validation.By(notNilUUID("agent_id is required")),
		),
	)
}

// RejectBookingRequest is the agent-side rejection of a pending booking
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

func (r RejectBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason,
			validation.Required.Error("reason is required"),
			validation.Length(3, 500).Error("reason must be 3-500 characters"),
		),
	)
}

// ListBookingsRequest holds list filters and pagination
type ListBookingsRequest struct {
	Status string `json:"status" form:"status"`
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
}

func (r *ListBookingsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
}

func (r ListBookingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.In(
				BookingStatusPending.String(),
				BookingStatusAccepted.String(),
				BookingStatusOnTheWay.String(),
				BookingStatusArrived.String(),
				BookingStatusInProgress.String(),
				BookingStatusCompleted.String(),
				BookingStatusCancelled.String(),
			).Error("status filter is not a valid booking status"),
		),
	)
}

// ListBookingsResponse wraps a page of bookings
type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}
