package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldserve-backend/internal/domains/booking/model"
	couponModel "fieldserve-backend/internal/domains/coupon/model"
)

func validCreateRequest() model.CreateBookingRequest {
	return model.CreateBookingRequest{
		ServiceID:     uuid.New(),
		Subtotal:      decimal.NewFromInt(100),
		Tax:           decimal.NewFromInt(8),
		PaymentMethod: string(model.PaymentMethodCash),
	}
}

func TestCreateBooking_Basics(t *testing.T) {
	repo := newFakeBookingRepo()
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, newFakeAgentRepo(), &fakeCouponService{}, dispatcher, &fakeGateway{})
	customerID := uuid.New()

	booking, err := svc.CreateBooking(context.Background(), customerID, validCreateRequest())

	require.NoError(t, err)
	assert.Equal(t, customerID, booking.CustomerID)
	assert.Equal(t, string(model.BookingStatusPending), booking.Status)
	assert.Equal(t, string(model.PaymentStatusUnpaid), booking.PaymentStatus)
	assert.True(t, booking.Total.Equal(decimal.NewFromInt(108)))

	expectedRef := fmt.Sprintf("FSV-%d-0001", time.Now().Year())
	assert.Equal(t, expectedRef, booking.Reference)

	require.Len(t, booking.Timeline, 1)
	assert.Equal(t, model.BookingStatusPending, booking.Timeline[0].Status)
	assert.Equal(t, "Booking created", booking.Timeline[0].Note)

	// creation announces the pending booking
	event := dispatcher.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, string(model.BookingStatusPending), event.NewStatus)
}

func TestCreateBooking_ReferencesAreSequential(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, &fakeGateway{})
	year := time.Now().Year()

	first, err := svc.CreateBooking(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("FSV-%d-0001", year), first.Reference)
	assert.Equal(t, fmt.Sprintf("FSV-%d-0002", year), second.Reference)
}

func TestCreateBooking_WithCoupon(t *testing.T) {
	repo := newFakeBookingRepo()
	couponID := uuid.New()
	coupons := &fakeCouponService{
		quote: &couponModel.ValidateCouponResponse{
			CouponID: couponID,
			Code:     "SUMMER20",
			Discount: decimal.NewFromInt(20),
		},
	}
	svc := newTestService(repo, newFakeAgentRepo(), coupons, &fakeDispatcher{}, &fakeGateway{})

	req := validCreateRequest()
	code := "summer20"
	req.CouponCode = &code

	booking, err := svc.CreateBooking(context.Background(), uuid.New(), req)

	require.NoError(t, err)
	assert.True(t, booking.Discount.Equal(decimal.NewFromInt(20)))
	// 100 - 20 + 8
	assert.True(t, booking.Total.Equal(decimal.NewFromInt(88)))
	require.NotNil(t, booking.CouponCode)
	assert.Equal(t, "SUMMER20", *booking.CouponCode, "code is normalized before lookup")
	require.Len(t, coupons.redeemed, 1)
	assert.Equal(t, couponID, coupons.redeemed[0])
}

func TestCreateBooking_CouponRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	coupons := &fakeCouponService{validateErr: couponModel.ErrCouponExpired}
	svc := newTestService(repo, newFakeAgentRepo(), coupons, &fakeDispatcher{}, &fakeGateway{})

	req := validCreateRequest()
	code := "STALE"
	req.CouponCode = &code

	_, err := svc.CreateBooking(context.Background(), uuid.New(), req)

	assert.ErrorIs(t, err, couponModel.ErrCouponExpired)

	// nothing may be stored on a rejected coupon
	bookings, total, listErr := repo.ListAll(context.Background(), "", 1, 10)
	require.NoError(t, listErr)
	assert.Zero(t, total)
	assert.Empty(t, bookings)
}

func TestCreateBooking_RedeemFailureAborts(t *testing.T) {
	repo := newFakeBookingRepo()
	coupons := &fakeCouponService{
		quote:     &couponModel.ValidateCouponResponse{CouponID: uuid.New(), Discount: decimal.NewFromInt(5)},
		redeemErr: couponModel.ErrCouponConflict,
	}
	svc := newTestService(repo, newFakeAgentRepo(), coupons, &fakeDispatcher{}, &fakeGateway{})

	req := validCreateRequest()
	code := "RACY"
	req.CouponCode = &code

	_, err := svc.CreateBooking(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, couponModel.ErrCouponConflict)
}

func TestCreateBooking_PaymentIntent(t *testing.T) {
	t.Run("card opens an intent", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc := newTestService(newFakeBookingRepo(), newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, gateway)

		req := validCreateRequest()
		req.PaymentMethod = string(model.PaymentMethodCard)

		booking, err := svc.CreateBooking(context.Background(), uuid.New(), req)
		require.NoError(t, err)
		require.Len(t, gateway.intents, 1)
		assert.Equal(t, booking.Reference, gateway.intents[0])
	})

	t.Run("cash does not", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc := newTestService(newFakeBookingRepo(), newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, gateway)

		_, err := svc.CreateBooking(context.Background(), uuid.New(), validCreateRequest())
		require.NoError(t, err)
		assert.Empty(t, gateway.intents)
	})
}

func TestCreateBooking_Validation(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, &fakeGateway{})

	tests := []struct {
		name   string
		mutate func(*model.CreateBookingRequest)
	}{
		{"missing service", func(r *model.CreateBookingRequest) { r.ServiceID = uuid.Nil }},
		{"unknown payment method", func(r *model.CreateBookingRequest) { r.PaymentMethod = "barter" }},
		{"negative subtotal", func(r *model.CreateBookingRequest) { r.Subtotal = decimal.NewFromInt(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.CreateBooking(context.Background(), uuid.New(), req)
			assert.Error(t, err)
		})
	}
}

func TestGetBooking_ReadAuthorization(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, &fakeGateway{})
	customerID := uuid.New()
	agentID := uuid.New()
	booking := seedBooking(repo, customerID, &agentID, model.BookingStatusAccepted)

	tests := []struct {
		name    string
		actor   model.Actor
		wantErr error
	}{
		{"owner", model.Actor{ID: customerID, Role: model.ActorCustomer}, nil},
		{"other customer", model.Actor{ID: uuid.New(), Role: model.ActorCustomer}, model.ErrUnauthorized},
		{"bound agent", model.Actor{ID: agentID, Role: model.ActorAgent}, nil},
		{"other agent", model.Actor{ID: uuid.New(), Role: model.ActorAgent}, model.ErrUnauthorized},
		{"admin", model.Actor{ID: uuid.New(), Role: model.ActorAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetBooking(context.Background(), booking.ID, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetBookingByReference(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, &fakeGateway{})
	customerID := uuid.New()
	booking := seedBooking(repo, customerID, nil, model.BookingStatusPending)

	found, err := svc.GetBookingByReference(context.Background(), booking.Reference,
		model.Actor{ID: customerID, Role: model.ActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)

	_, err = svc.GetBookingByReference(context.Background(), "FSV-2026-9999",
		model.Actor{ID: customerID, Role: model.ActorCustomer})
	assert.ErrorIs(t, err, model.ErrBookingNotFound)
}

func TestListBookings_FiltersAndPaginates(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, newFakeAgentRepo(), &fakeCouponService{}, &fakeDispatcher{}, &fakeGateway{})
	customerID := uuid.New()

	for i := 0; i < 3; i++ {
		seedBooking(repo, customerID, nil, model.BookingStatusPending)
	}
	seedBooking(repo, customerID, nil, model.BookingStatusCancelled)
	seedBooking(repo, uuid.New(), nil, model.BookingStatusPending)

	result, err := svc.ListCustomerBookings(context.Background(), customerID,
		model.ListBookingsRequest{Status: string(model.BookingStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.Limit)

	result, err = svc.ListCustomerBookings(context.Background(), customerID, model.ListBookingsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)

	_, err = svc.ListCustomerBookings(context.Background(), customerID,
		model.ListBookingsRequest{Status: "mislaid"})
	assert.Error(t, err)
}
