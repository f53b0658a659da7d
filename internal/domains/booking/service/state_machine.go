package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/booking/model"
	"fieldserve-backend/internal/shared"
	"fieldserve-backend/pkg/logger"
)

// =====================================================
// STATE MACHINE
// =====================================================
//
// Transition is the only write path for booking statuses outside of
// assignment. The allowed-transition graph lives on the model; this layer
// adds the per-actor authorization gate, the conditional store write, the
// completion side-effects and the notification hook.

func (s *bookingService) Transition(ctx context.Context, bookingID uuid.UUID, target model.BookingStatus, actor model.Actor, note string) (*model.Booking, error) {
	if !target.IsValid() {
		return nil, model.ErrInvalidStatus
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(booking, target, actor); err != nil {
		return nil, err
	}

	if !booking.CanTransitionTo(target) {
		return nil, model.ErrInvalidTransition
	}

	current := model.BookingStatus(booking.Status)
	entry := model.TimelineEntry{
		Status:    target,
		Timestamp: s.now(),
		Note:      noteOrDefault(target, note),
	}

	if target == model.BookingStatusCompleted {
		err = s.complete(ctx, booking, entry)
	} else {
		err = s.bookingRepo.TransitionStatus(ctx, bookingID, current, target, entry)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated, current, target)

	return updated, nil
}

// complete runs the status flip, the payment finalization and the agent
// credit in one transaction. The earnings ledger keyed by booking id
// makes the credit idempotent even if a retry slips past the CAS.
func (s *bookingService) complete(ctx context.Context, booking *model.Booking, entry model.TimelineEntry) error {
	tx, err := s.bookingRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer func() {
		_ = s.bookingRepo.RollbackTx(ctx, tx)
	}()

	if err := s.bookingRepo.CompleteWithTx(ctx, tx, booking.ID, entry); err != nil {
		return err
	}

	if booking.AgentID != nil {
		credited, err := s.agentRepo.CreditEarningsWithTx(ctx, tx, *booking.AgentID, booking.ID, booking.Total)
		if err != nil {
			return err
		}
		if !credited {
			logger.Info("agent already credited for booking", map[string]interface{}{
				"booking_id": booking.ID,
				"agent_id":   *booking.AgentID,
			})
		}
	}

	return s.bookingRepo.CommitTx(ctx, tx)
}

// authorizeTransition gates who may request which target. The graph
// itself is actor-independent.
func authorizeTransition(booking *model.Booking, target model.BookingStatus, actor model.Actor) error {
	switch actor.Role {
	case model.ActorAdmin, model.ActorSystem:
		return nil

	case model.ActorAgent:
		if booking.AgentID == nil || *booking.AgentID != actor.ID {
			return model.ErrUnauthorized
		}
		return nil

	case model.ActorCustomer:
		if booking.CustomerID != actor.ID {
			return model.ErrUnauthorized
		}
		if target != model.BookingStatusCancelled {
			return model.ErrUnauthorized
		}
		if !booking.IsCancellableByCustomer() {
			return model.ErrNotCancellable
		}
		return nil

	default:
		return model.ErrUnauthorized
	}
}

// noteOrDefault fills in a generated note when the caller supplies none
func noteOrDefault(target model.BookingStatus, note string) string {
	if note != "" {
		return note
	}

	switch target {
	case model.BookingStatusPending:
		return "Booking is awaiting acceptance"
	case model.BookingStatusAccepted:
		return "Agent accepted the booking"
	case model.BookingStatusOnTheWay:
		return "Agent is on the way"
	case model.BookingStatusArrived:
		return "Agent arrived at the location"
	case model.BookingStatusInProgress:
		return "Service is in progress"
	case model.BookingStatusCompleted:
		return "Service completed"
	case model.BookingStatusCancelled:
		return "Booking cancelled"
	}
	return string(target)
}

// transitionMessages maps the new status to the user-facing notification
// texts. The switch is exhaustive over the closed status enum: adding a
// status without a message here shows up as a missing case in review,
// not a silent no-op at runtime.
func transitionMessages(b *model.Booking, newStatus model.BookingStatus) (customerMsg, agentMsg string) {
	switch newStatus {
	case model.BookingStatusPending:
		customerMsg = fmt.Sprintf("Your booking %s is waiting for an agent to accept.", b.Reference)
		agentMsg = fmt.Sprintf("You have a new job offer: %s.", b.Reference)
	case model.BookingStatusAccepted:
		customerMsg = fmt.Sprintf("Your booking %s was accepted.", b.Reference)
		agentMsg = fmt.Sprintf("You accepted booking %s.", b.Reference)
	case model.BookingStatusOnTheWay:
		customerMsg = fmt.Sprintf("Your agent is on the way for booking %s.", b.Reference)
	case model.BookingStatusArrived:
		customerMsg = fmt.Sprintf("Your agent has arrived for booking %s.", b.Reference)
	case model.BookingStatusInProgress:
		customerMsg = fmt.Sprintf("Work on your booking %s has started.", b.Reference)
	case model.BookingStatusCompleted:
		customerMsg = fmt.Sprintf("Your booking %s is complete. Thank you!", b.Reference)
		agentMsg = fmt.Sprintf("Booking %s completed, earnings credited.", b.Reference)
	case model.BookingStatusCancelled:
		customerMsg = fmt.Sprintf("Your booking %s was cancelled.", b.Reference)
		agentMsg = fmt.Sprintf("Booking %s was cancelled.", b.Reference)
	}
	return customerMsg, agentMsg
}

// notify fires the post-transition hook. Failures are logged and
// swallowed: a delivered state change is never rolled back or reported
// as failed because a notification could not be sent.
func (s *bookingService) notify(ctx context.Context, booking *model.Booking, oldStatus, newStatus model.BookingStatus) {
	customerMsg, agentMsg := transitionMessages(booking, newStatus)

	payload := shared.BookingEventPayload{
		BookingID:       booking.ID.String(),
		Reference:       booking.Reference,
		CustomerID:      booking.CustomerID.String(),
		OldStatus:       oldStatus.String(),
		NewStatus:       newStatus.String(),
		CustomerMessage: customerMsg,
		AgentMessage:    agentMsg,
	}
	if booking.AgentID != nil {
		agentID := booking.AgentID.String()
		payload.AgentID = &agentID
	}

	if err := s.dispatcher.DispatchBookingEvent(ctx, payload); err != nil {
		logger.Error("failed to dispatch booking notification", err)
	}
}

// compile-time interface checks
var (
	_ BookingService    = (*bookingService)(nil)
	_ AssignmentService = (*bookingService)(nil)
)
