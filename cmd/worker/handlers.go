package main

import (
	"github.com/hibiken/asynq"

	"fieldserve-backend/internal/infrastructure/notification"
	notificationJob "fieldserve-backend/internal/infrastructure/notification/job"
	"fieldserve-backend/internal/shared"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	bookingEvent *notificationJob.BookingEventHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers() *HandlerRegistry {
	push := notification.NewMockPushService()

	return &HandlerRegistry{
		bookingEvent: notificationJob.NewBookingEventHandler(push),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeBookingEvent, h.bookingEvent.ProcessTask)
}
