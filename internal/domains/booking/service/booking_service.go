package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	agentrepo "fieldserve-backend/internal/domains/agent/repository"
	"fieldserve-backend/internal/domains/booking/model"
	"fieldserve-backend/internal/domains/booking/repository"
	couponService "fieldserve-backend/internal/domains/coupon/service"
	"fieldserve-backend/internal/infrastructure/payment"
	"fieldserve-backend/pkg/logger"
)

// =====================================================
// BOOKING SERVICE IMPLEMENTATION
// =====================================================
//
// One struct backs both BookingService and AssignmentService: assignment
// is just the agent-binding half of the same lifecycle, and both need
// the same repositories and notification hook.
type bookingService struct {
	bookingRepo repository.BookingRepository
	agentRepo   agentrepo.AgentRepository
	couponSvc   couponService.CouponService
	dispatcher  Dispatcher
	gateway     payment.Gateway
	references  *ReferenceGenerator
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	agentRepo agentrepo.AgentRepository,
	couponSvc couponService.CouponService,
	dispatcher Dispatcher,
	gateway payment.Gateway,
	references *ReferenceGenerator,
) *bookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		agentRepo:   agentRepo,
		couponSvc:   couponSvc,
		dispatcher:  dispatcher,
		gateway:     gateway,
		references:  references,
		now:         time.Now,
	}
}

// =====================================================
// CREATE BOOKING
// =====================================================

func (s *bookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req model.CreateBookingRequest) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.NormalizeCoupon()

	booking := &model.Booking{
		ID:            uuid.New(),
		CustomerID:    customerID,
		ServiceID:     req.ServiceID,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: string(model.PaymentStatusUnpaid),
		Status:        string(model.BookingStatusPending),
		CustomerNote:  req.CustomerNote,
	}

	// Apply coupon, if any: validate for a quote, then consume the use.
	// The redeem is atomic on the coupon side so a concurrent request
	// with the same code cannot double-discount.
	if req.CouponCode != nil {
		quote, err := s.couponSvc.Validate(ctx, *req.CouponCode, req.Subtotal, customerID)
		if err != nil {
			return nil, err
		}

		if err := s.couponSvc.Redeem(ctx, quote.CouponID, customerID); err != nil {
			return nil, err
		}

		booking.Discount = quote.Discount
		booking.CouponCode = req.CouponCode
	}

	booking.Total = booking.CalculateTotal()

	reference, err := s.references.Generate(ctx)
	if err != nil {
		return nil, err
	}
	booking.Reference = reference

	booking.Timeline = model.Timeline{{
		Status:    model.BookingStatusPending,
		Timestamp: s.now(),
		Note:      "Booking created",
	}}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("booking created", map[string]interface{}{
		"booking_id": booking.ID,
		"reference":  booking.Reference,
		"customer":   customerID,
	})

	// non-cash bookings open a payment intent up front; confirmation is
	// driven by the gateway webhook outside this core
	if booking.PaymentMethod != string(model.PaymentMethodCash) {
		if _, err := s.gateway.CreateIntent(ctx, booking.Reference, booking.Total); err != nil {
			logger.Error("failed to create payment intent", err)
		}
	}

	s.notify(ctx, booking, model.BookingStatusPending, model.BookingStatusPending)

	return booking, nil
}

// =====================================================
// CUSTOMER CANCELLATION
// =====================================================

func (s *bookingService) CancelByCustomer(ctx context.Context, bookingID, customerID uuid.UUID, reason string) (*model.Booking, error) {
	actor := model.Actor{ID: customerID, Role: model.ActorCustomer}
	return s.Transition(ctx, bookingID, model.BookingStatusCancelled, actor, reason)
}

// =====================================================
// QUERIES
// =====================================================

func (s *bookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor model.Actor) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeRead(booking, actor); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) GetBookingByReference(ctx context.Context, reference string, actor model.Actor) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := authorizeRead(booking, actor); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) ListCustomerBookings(ctx context.Context, customerID uuid.UUID, req model.ListBookingsRequest) (*model.ListBookingsResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bookings, total, err := s.bookingRepo.ListByCustomer(ctx, customerID, req.Status, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.ListBookingsResponse{Bookings: bookings, Page: req.Page, Limit: req.Limit, Total: total}, nil
}

func (s *bookingService) ListAgentBookings(ctx context.Context, agentID uuid.UUID, req model.ListBookingsRequest) (*model.ListBookingsResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bookings, total, err := s.bookingRepo.ListByAgent(ctx, agentID, req.Status, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.ListBookingsResponse{Bookings: bookings, Page: req.Page, Limit: req.Limit, Total: total}, nil
}

func (s *bookingService) ListAllBookings(ctx context.Context, req model.ListBookingsRequest) (*model.ListBookingsResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bookings, total, err := s.bookingRepo.ListAll(ctx, req.Status, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.ListBookingsResponse{Bookings: bookings, Page: req.Page, Limit: req.Limit, Total: total}, nil
}

// authorizeRead: customers see their own bookings, agents the ones bound
// to them, admin/system everything
func authorizeRead(booking *model.Booking, actor model.Actor) error {
	switch actor.Role {
	case model.ActorAdmin, model.ActorSystem:
		return nil
	case model.ActorCustomer:
		if booking.CustomerID != actor.ID {
			return model.ErrUnauthorized
		}
		return nil
	case model.ActorAgent:
		if booking.AgentID == nil || *booking.AgentID != actor.ID {
			return model.ErrUnauthorized
		}
		return nil
	default:
		return model.ErrUnauthorized
	}
}
