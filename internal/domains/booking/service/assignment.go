package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/booking/model"
)

// =====================================================
// ASSIGNMENT SERVICE
// =====================================================
//
// Assign, Accept and Reject all ride on a single conditional update in
// the repository. A zero-row match means another writer won; the booking
// is re-read once to decide whether that was an authorization problem,
// an illegal state, or a plain concurrent-modification conflict.

// Assign binds an active agent and forces the booking back to pending,
// modelling "awaiting acceptance". Re-assigning a booking whose agent has
// not yet accepted is allowed and idempotent.
func (s *bookingService) Assign(ctx context.Context, bookingID, agentID uuid.UUID) (*model.Booking, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if !agent.IsActive() {
		return nil, model.ErrAgentNotActive
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.IsAssignable() {
		return nil, model.ErrNotAssignable
	}

	oldStatus := model.BookingStatus(booking.Status)
	entry := model.TimelineEntry{
		Status:    model.BookingStatusPending,
		Timestamp: s.now(),
		Note:      fmt.Sprintf("Assigned to agent %s, awaiting acceptance", agent.FullName),
	}

	err = s.bookingRepo.AssignAgent(ctx, bookingID, agentID, agent.FullName, entry)
	if err != nil {
		return nil, s.classifyAssignFailure(ctx, bookingID, err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated, oldStatus, model.BookingStatusPending)

	return updated, nil
}

// Accept transitions pending -> accepted for the bound agent only
func (s *bookingService) Accept(ctx context.Context, bookingID, agentID uuid.UUID) (*model.Booking, error) {
	entry := model.TimelineEntry{
		Status:    model.BookingStatusAccepted,
		Timestamp: s.now(),
		Note:      noteOrDefault(model.BookingStatusAccepted, ""),
	}

	err := s.bookingRepo.AcceptByAgent(ctx, bookingID, agentID, entry)
	if err != nil {
		return nil, s.classifyAgentFailure(ctx, bookingID, agentID, err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated, model.BookingStatusPending, model.BookingStatusAccepted)

	return updated, nil
}

// Reject unbinds the agent and cancels the booking. A reject is a full
// cancellation, not a return to an unassigned pool.
func (s *bookingService) Reject(ctx context.Context, bookingID, agentID uuid.UUID, reason string) (*model.Booking, error) {
	if reason == "" {
		reason = "Agent rejected the booking"
	}

	entry := model.TimelineEntry{
		Status:    model.BookingStatusCancelled,
		Timestamp: s.now(),
		Note:      reason,
	}

	err := s.bookingRepo.RejectByAgent(ctx, bookingID, agentID, entry)
	if err != nil {
		return nil, s.classifyAgentFailure(ctx, bookingID, agentID, err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated, model.BookingStatusPending, model.BookingStatusCancelled)

	return updated, nil
}

// classifyAssignFailure re-reads the booking after a failed conditional
// assign to report the most useful error
func (s *bookingService) classifyAssignFailure(ctx context.Context, bookingID uuid.UUID, err error) error {
	if err != model.ErrConflict {
		return err
	}

	booking, readErr := s.bookingRepo.GetByID(ctx, bookingID)
	if readErr != nil {
		return readErr
	}
	if !booking.IsAssignable() {
		return model.ErrNotAssignable
	}
	return model.ErrConflict
}

// classifyAgentFailure re-reads the booking after a failed conditional
// accept/reject: a caller who is not the bound agent gets Unauthorized, a
// booking past pending gets InvalidTransition, the rest stays Conflict.
func (s *bookingService) classifyAgentFailure(ctx context.Context, bookingID, agentID uuid.UUID, err error) error {
	if err != model.ErrConflict {
		return err
	}

	booking, readErr := s.bookingRepo.GetByID(ctx, bookingID)
	if readErr != nil {
		return readErr
	}

	if booking.AgentID == nil || *booking.AgentID != agentID {
		return model.ErrUnauthorized
	}
	if booking.Status != string(model.BookingStatusPending) {
		return model.ErrInvalidTransition
	}
	return model.ErrConflict
}
