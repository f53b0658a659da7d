package model

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAgentNotActive    = errors.New("agent is not active")
	ErrUnauthorized      = errors.New("actor is not allowed to modify this booking")
	ErrConflict          = errors.New("booking was modified concurrently")
	ErrNoAgentBound      = errors.New("no agent is bound to this booking")
	ErrNotCancellable    = errors.New("booking cannot be cancelled by the customer at this stage")
	ErrNotAssignable     = errors.New("booking cannot be assigned at this stage")

	ErrInvalidStatus        = errors.New("invalid booking status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidSubtotal      = errors.New("subtotal must be >= 0")
	ErrInvalidDiscount      = errors.New("discount must be between 0 and subtotal")
	ErrInvalidTax           = errors.New("tax must be >= 0")
	ErrTotalMismatch        = errors.New("total does not match subtotal - discount + tax")
	ErrInvalidTimeline      = errors.New("invalid timeline format")
	ErrTimelineOutOfSync    = errors.New("status does not match last timeline entry")
)

// Stable error codes surfaced in API responses
const (
	ErrCodeBookingNotFound   = "BOOKING_NOT_FOUND"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeAgentNotActive    = "AGENT_NOT_ACTIVE"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeNotCancellable    = "NOT_CANCELLABLE"
	ErrCodeNotAssignable     = "NOT_ASSIGNABLE"
	ErrCodeValidationFailed  = "VAL_INVALID_INPUT"
	ErrCodeInternalError     = "SYS_INTERNAL_ERROR"
)
