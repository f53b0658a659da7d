package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"fieldserve-backend/internal/infrastructure/notification"
	"fieldserve-backend/internal/shared"
)

// BookingEventHandler delivers the per-transition notifications to the
// customer and, where relevant, the agent
type BookingEventHandler struct {
	push notification.PushProvider
}

func NewBookingEventHandler(push notification.PushProvider) *BookingEventHandler {
	return &BookingEventHandler{push: push}
}

func (h *BookingEventHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.BookingEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode booking event payload: %w", err)
	}

	title := fmt.Sprintf("Booking %s", payload.Reference)

	if payload.CustomerMessage != "" {
		if _, err := h.push.SendPush(ctx, payload.CustomerID, title, payload.CustomerMessage); err != nil {
			// best-effort: log and move on, never retry into a storm
			log.Error().Err(err).
				Str("booking_id", payload.BookingID).
				Str("customer_id", payload.CustomerID).
				Msg("failed to push customer notification")
		}
	}

	if payload.AgentID != nil && payload.AgentMessage != "" {
		if _, err := h.push.SendPush(ctx, *payload.AgentID, title, payload.AgentMessage); err != nil {
			log.Error().Err(err).
				Str("booking_id", payload.BookingID).
				Str("agent_id", *payload.AgentID).
				Msg("failed to push agent notification")
		}
	}

	return nil
}
