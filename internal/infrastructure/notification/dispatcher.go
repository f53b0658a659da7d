package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"fieldserve-backend/internal/shared"
)

// =====================================================
// ASYNQ DISPATCHER
// =====================================================
//
// The dispatcher only enqueues; delivery happens in cmd/worker. Enqueue
// errors bubble up to the caller, which logs and swallows them so that a
// failed notification never fails the transition that produced it.

type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

func (d *AsynqDispatcher) DispatchBookingEvent(ctx context.Context, payload shared.BookingEventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	task := asynq.NewTask(shared.TypeBookingEvent, data)

	if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
		return fmt.Errorf("failed to enqueue booking event: %w", err)
	}

	return nil
}
