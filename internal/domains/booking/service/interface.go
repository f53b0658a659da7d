package service

import (
	"context"

	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/booking/model"
	"fieldserve-backend/internal/shared"
)

// =====================================================
// BOOKING SERVICE INTERFACE
// =====================================================
type BookingService interface {
	// CreateBooking opens a booking for a customer, optionally applying
	// (and redeeming) a coupon, and seeds the timeline
	CreateBooking(ctx context.Context, customerID uuid.UUID, req model.CreateBookingRequest) (*model.Booking, error)

	// Transition moves the booking through the status graph on behalf of
	// an actor; authorization differs per actor, the graph does not
	Transition(ctx context.Context, bookingID uuid.UUID, target model.BookingStatus, actor model.Actor, note string) (*model.Booking, error)

	// CancelByCustomer is the customer-initiated cancellation path,
	// limited to pending/accepted bookings
	CancelByCustomer(ctx context.Context, bookingID, customerID uuid.UUID, reason string) (*model.Booking, error)

	// Queries
	GetBooking(ctx context.Context, bookingID uuid.UUID, actor model.Actor) (*model.Booking, error)
	GetBookingByReference(ctx context.Context, reference string, actor model.Actor) (*model.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID uuid.UUID, req model.ListBookingsRequest) (*model.ListBookingsResponse, error)
	ListAgentBookings(ctx context.Context, agentID uuid.UUID, req model.ListBookingsRequest) (*model.ListBookingsResponse, error)
	ListAllBookings(ctx context.Context, req model.ListBookingsRequest) (*model.ListBookingsResponse, error)
}

// =====================================================
// ASSIGNMENT SERVICE INTERFACE
// =====================================================
type AssignmentService interface {
	// Assign binds an active agent to a booking and forces it back to
	// pending ("awaiting acceptance")
	Assign(ctx context.Context, bookingID, agentID uuid.UUID) (*model.Booking, error)

	// Accept is the bound agent taking the job: pending -> accepted
	Accept(ctx context.Context, bookingID, agentID uuid.UUID) (*model.Booking, error)

	// Reject unbinds the agent and cancels the booking
	Reject(ctx context.Context, bookingID, agentID uuid.UUID, reason string) (*model.Booking, error)
}

// Dispatcher delivers user-facing notifications out-of-band. Delivery is
// best-effort: failures are logged by the caller and never affect the
// transition that triggered them.
type Dispatcher interface {
	DispatchBookingEvent(ctx context.Context, payload shared.BookingEventPayload) error
}
