package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// PushProvider is the delivery transport consumed by the worker. The
// real transport (FCM/APNs) lives outside this core.
type PushProvider interface {
	SendPush(ctx context.Context, userID, title, body string) (messageID string, err error)
}

// ================================================
// MOCK PUSH SERVICE (for development)
// ================================================

type MockPushService struct{}

func NewMockPushService() *MockPushService {
	return &MockPushService{}
}

func (s *MockPushService) SendPush(ctx context.Context, userID, title, body string) (messageID string, err error) {
	log.Info().
		Str("user_id", userID).
		Str("title", title).
		Str("body", body).
		Msg("[MOCK] Push notification sent successfully")

	messageID = fmt.Sprintf("mock-push-%d", time.Now().Unix())
	return messageID, nil
}
