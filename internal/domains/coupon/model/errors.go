package model

import "errors"

var (
	ErrInvalidCustomerList = errors.New("invalid customer list format")
	ErrDuplicateCode       = errors.New("coupon code already exists")
)

type ErrorCode string

const (
	// Validation failures surfaced to the customer app (sub-kinds of CouponRejected)
	ErrCodeCouponNotFound     ErrorCode = "COUPON_NOT_FOUND"     // 404
	ErrCodeCouponInactive     ErrorCode = "COUPON_INACTIVE"      // 400
	ErrCodeCouponExpired      ErrorCode = "COUPON_EXPIRED"       // 400
	ErrCodeCouponLimitReached ErrorCode = "COUPON_LIMIT_REACHED" // 400
	ErrCodeCouponBelowMinimum ErrorCode = "COUPON_BELOW_MINIMUM" // 400
	ErrCodeCouponNotEligible  ErrorCode = "COUPON_NOT_ELIGIBLE"  // 400
	ErrCodeCouponAlreadyUsed  ErrorCode = "COUPON_ALREADY_USED"  // 400
	ErrCodeCouponConflict     ErrorCode = "COUPON_CONFLICT"      // 409

	// Admin operation errors
	ErrCodeCouponDuplicateCode ErrorCode = "VAL_DUPLICATE_CODE" // 400

	ErrCodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"  // 400
	ErrCodeInternalError    ErrorCode = "SYS_INTERNAL_ERROR" // 500
)

// AppError is the typed coupon rejection carried across layers so the
// handler can map it to a stable code and HTTP status.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Predefined rejections, ordered the way validation checks them
var (
	ErrCouponNotFound = &AppError{
		Code:       ErrCodeCouponNotFound,
		Message:    "Coupon code does not exist",
		HTTPStatus: 404,
	}

	ErrCouponInactive = &AppError{
		Code:       ErrCodeCouponInactive,
		Message:    "Coupon is no longer active",
		HTTPStatus: 400,
	}

	ErrCouponExpired = &AppError{
		Code:       ErrCodeCouponExpired,
		Message:    "Coupon has expired",
		HTTPStatus: 400,
	}

	ErrCouponLimitReached = &AppError{
		Code:       ErrCodeCouponLimitReached,
		Message:    "Coupon usage limit has been reached",
		HTTPStatus: 400,
	}

	ErrCouponBelowMinimum = &AppError{
		Code:       ErrCodeCouponBelowMinimum,
		Message:    "Order value is below the coupon minimum",
		HTTPStatus: 400,
	}

	ErrCouponNotEligible = &AppError{
		Code:       ErrCodeCouponNotEligible,
		Message:    "Coupon is not available for this customer",
		HTTPStatus: 400,
	}

	ErrCouponAlreadyUsed = &AppError{
		Code:       ErrCodeCouponAlreadyUsed,
		Message:    "Coupon has already been used by this customer",
		HTTPStatus: 400,
	}

	ErrCouponConflict = &AppError{
		Code:       ErrCodeCouponConflict,
		Message:    "Coupon was redeemed concurrently, try again",
		HTTPStatus: 409,
	}
)
