package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	agentModel "fieldserve-backend/internal/domains/agent/model"
	"fieldserve-backend/internal/domains/booking/model"
	couponModel "fieldserve-backend/internal/domains/coupon/model"
	"fieldserve-backend/internal/shared"
)

// fakeBookingRepo is an in-memory BookingRepository that mirrors the
// store's conditional-update behaviour: every state change checks the
// expected prior state under a lock and reports ErrConflict on a miss.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking
	seq      int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (r *fakeBookingRepo) put(b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	cp.Timeline = append(model.Timeline{}, b.Timeline...)
	return &cp
}

func (r *fakeBookingRepo) BeginTx(ctx context.Context) (pgx.Tx, error)     { return nil, nil }
func (r *fakeBookingRepo) CommitTx(ctx context.Context, tx pgx.Tx) error   { return nil }
func (r *fakeBookingRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error { return nil }

func (r *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.put(copyBooking(booking))
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) GetByIDAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Booking, error) {
	b, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, model.ErrBookingNotFound
	}
	return b, nil
}

func (r *fakeBookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Reference == reference {
			return copyBooking(b), nil
		}
	}
	return nil, model.ErrBookingNotFound
}

func (r *fakeBookingRepo) NextReferenceSeq(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *fakeBookingRepo) TransitionStatus(ctx context.Context, bookingID uuid.UUID, from, to model.BookingStatus, entry model.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != string(from) {
		return model.ErrConflict
	}
	b.Status = string(to)
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) CompleteWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, entry model.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != string(model.BookingStatusInProgress) {
		return model.ErrConflict
	}
	b.Status = string(model.BookingStatusCompleted)
	b.PaymentStatus = string(model.PaymentStatusPaid)
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) AssignAgent(ctx context.Context, bookingID, agentID uuid.UUID, agentName string, entry model.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || !b.IsAssignable() {
		return model.ErrConflict
	}
	b.AgentID = &agentID
	b.AgentName = &agentName
	b.Status = string(model.BookingStatusPending)
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) AcceptByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != string(model.BookingStatusPending) ||
		b.AgentID == nil || *b.AgentID != agentID {
		return model.ErrConflict
	}
	b.Status = string(model.BookingStatusAccepted)
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) RejectByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != string(model.BookingStatusPending) ||
		b.AgentID == nil || *b.AgentID != agentID {
		return model.ErrConflict
	}
	b.AgentID = nil
	b.AgentName = nil
	b.Status = string(model.BookingStatusCancelled)
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) list(filter func(*model.Booking) bool, status string, page, limit int) ([]model.Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.Booking
	for _, b := range r.bookings {
		if !filter(b) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		matched = append(matched, *copyBooking(b))
	}
	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []model.Booking{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error) {
	return r.list(func(b *model.Booking) bool { return b.CustomerID == customerID }, status, page, limit)
}

func (r *fakeBookingRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error) {
	return r.list(func(b *model.Booking) bool { return b.AgentID != nil && *b.AgentID == agentID }, status, page, limit)
}

func (r *fakeBookingRepo) ListAll(ctx context.Context, status string, page, limit int) ([]model.Booking, int, error) {
	return r.list(func(*model.Booking) bool { return true }, status, page, limit)
}

// fakeAgentRepo keeps agents in a map and an earnings ledger keyed by
// booking id, like the real table's primary key.
type fakeAgentRepo struct {
	mu       sync.Mutex
	agents   map[uuid.UUID]*agentModel.Agent
	credited map[uuid.UUID]uuid.UUID // bookingID -> agentID
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{
		agents:   make(map[uuid.UUID]*agentModel.Agent),
		credited: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeAgentRepo) addAgent(name string, status agentModel.AgentStatus) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.agents[id] = &agentModel.Agent{ID: id, FullName: name, Status: string(status)}
	return id
}

func (r *fakeAgentRepo) GetByID(ctx context.Context, agentID uuid.UUID) (*agentModel.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[agentID]
	if !ok {
		return nil, agentModel.ErrAgentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAgentRepo) CreditEarningsWithTx(ctx context.Context, tx pgx.Tx, agentID, bookingID uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.credited[bookingID]; done {
		return false, nil
	}
	r.credited[bookingID] = agentID
	a := r.agents[agentID]
	a.TotalJobs++
	a.CompletedJobs++
	a.TotalEarnings = a.TotalEarnings.Add(amount)
	a.WalletBalance = a.WalletBalance.Add(amount)
	return true, nil
}

func (r *fakeAgentRepo) creditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.credited)
}

// fakeDispatcher records dispatched events and can be told to fail
type fakeDispatcher struct {
	mu     sync.Mutex
	events []shared.BookingEventPayload
	err    error
}

func (d *fakeDispatcher) DispatchBookingEvent(ctx context.Context, payload shared.BookingEventPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, payload)
	return nil
}

func (d *fakeDispatcher) lastEvent() *shared.BookingEventPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return nil
	}
	return &d.events[len(d.events)-1]
}

// fakeGateway records payment intents
type fakeGateway struct {
	mu      sync.Mutex
	intents []string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, bookingRef string, amount decimal.Decimal) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents = append(g.intents, bookingRef)
	return "intent-" + bookingRef, nil
}

func (g *fakeGateway) Confirm(ctx context.Context, intentID string) error { return nil }

// fakeCouponService returns a canned quote or rejection
type fakeCouponService struct {
	quote       *couponModel.ValidateCouponResponse
	validateErr error
	redeemErr   error
	redeemed    []uuid.UUID
}

func (s *fakeCouponService) Validate(ctx context.Context, code string, orderValue decimal.Decimal, customerID uuid.UUID) (*couponModel.ValidateCouponResponse, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.quote, nil
}

func (s *fakeCouponService) Redeem(ctx context.Context, couponID, customerID uuid.UUID) error {
	if s.redeemErr != nil {
		return s.redeemErr
	}
	s.redeemed = append(s.redeemed, couponID)
	return nil
}

func (s *fakeCouponService) CreateCoupon(ctx context.Context, req couponModel.CreateCouponRequest) (*couponModel.Coupon, error) {
	return nil, nil
}

func (s *fakeCouponService) UpdateCoupon(ctx context.Context, couponID uuid.UUID, req couponModel.UpdateCouponRequest) (*couponModel.Coupon, error) {
	return nil, nil
}

func (s *fakeCouponService) DeactivateCoupon(ctx context.Context, couponID uuid.UUID) error {
	return nil
}

func (s *fakeCouponService) GetCoupon(ctx context.Context, couponID uuid.UUID) (*couponModel.Coupon, error) {
	return nil, nil
}

func (s *fakeCouponService) ListCoupons(ctx context.Context, req couponModel.ListCouponsRequest) (*couponModel.ListCouponsResponse, error) {
	return nil, nil
}

// newTestService wires a bookingService onto the fakes
func newTestService(repo *fakeBookingRepo, agents *fakeAgentRepo, coupons *fakeCouponService, dispatcher *fakeDispatcher, gateway *fakeGateway) *bookingService {
	refs := NewReferenceGenerator("FSV", repo)
	svc := NewBookingService(repo, agents, coupons, dispatcher, gateway, refs)
	return svc
}

// seedBooking creates a stored booking in the given status
func seedBooking(repo *fakeBookingRepo, customerID uuid.UUID, agentID *uuid.UUID, status model.BookingStatus) *model.Booking {
	b := &model.Booking{
		ID:            uuid.New(),
		Reference:     "FSV-2026-0001",
		CustomerID:    customerID,
		ServiceID:     uuid.New(),
		Subtotal:      decimal.NewFromInt(100),
		Tax:           decimal.NewFromInt(10),
		Total:         decimal.NewFromInt(110),
		PaymentMethod: string(model.PaymentMethodCash),
		PaymentStatus: string(model.PaymentStatusUnpaid),
		Status:        string(status),
		Timeline: model.Timeline{{
			Status:    status,
			Timestamp: time.Now(),
			Note:      "seeded",
		}},
	}
	if agentID != nil {
		b.AgentID = agentID
		name := "Test Agent"
		b.AgentName = &name
	}
	repo.put(b)
	return b
}
