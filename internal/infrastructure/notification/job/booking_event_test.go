package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldserve-backend/internal/shared"
)

type push struct {
	userID string
	title  string
	body   string
}

type fakePush struct {
	sent []push
	err  error
}

func (p *fakePush) SendPush(_ context.Context, userID, title, body string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, push{userID: userID, title: title, body: body})
	return "msg-1", nil
}

func taskFor(t *testing.T, payload shared.BookingEventPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeBookingEvent, data)
}

func TestProcessTask_NotifiesBothParties(t *testing.T) {
	pusher := &fakePush{}
	h := NewBookingEventHandler(pusher)
	agentID := "a6f0b0a2-95a4-4f34-a6b2-0d4f6c9e1b11"

	err := h.ProcessTask(context.Background(), taskFor(t, shared.BookingEventPayload{
		BookingID:       "b-1",
		Reference:       "FSV-2026-0041",
		CustomerID:      "c-1",
		AgentID:         &agentID,
		OldStatus:       "pending",
		NewStatus:       "accepted",
		CustomerMessage: "Your booking has been accepted",
		AgentMessage:    "You accepted the booking",
	}))

	require.NoError(t, err)
	require.Len(t, pusher.sent, 2)
	assert.Equal(t, "c-1", pusher.sent[0].userID)
	assert.Equal(t, "Booking FSV-2026-0041", pusher.sent[0].title)
	assert.Equal(t, "Your booking has been accepted", pusher.sent[0].body)
	assert.Equal(t, agentID, pusher.sent[1].userID)
}

func TestProcessTask_SkipsEmptyMessages(t *testing.T) {
	pusher := &fakePush{}
	h := NewBookingEventHandler(pusher)

	err := h.ProcessTask(context.Background(), taskFor(t, shared.BookingEventPayload{
		BookingID:       "b-1",
		Reference:       "FSV-2026-0041",
		CustomerID:      "c-1",
		CustomerMessage: "Your booking was created",
	}))

	require.NoError(t, err)
	// no agent bound, nothing to send them
	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "c-1", pusher.sent[0].userID)
}

func TestProcessTask_PushFailureDoesNotRetry(t *testing.T) {
	pusher := &fakePush{err: errors.New("provider down")}
	h := NewBookingEventHandler(pusher)

	err := h.ProcessTask(context.Background(), taskFor(t, shared.BookingEventPayload{
		BookingID:       "b-1",
		Reference:       "FSV-2026-0041",
		CustomerID:      "c-1",
		CustomerMessage: "Your booking was created",
	}))

	assert.NoError(t, err)
}

func TestProcessTask_BadPayload(t *testing.T) {
	h := NewBookingEventHandler(&fakePush{})

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeBookingEvent, []byte("{not json")))
	assert.Error(t, err)
}
