package shared

// Asynq task type names
const (
	TypeBookingEvent = "booking:status_changed"
)

// BookingEventPayload is the task payload handed to the notification
// worker after a successful status transition. Kept here so the booking
// domain and the worker do not import each other.
type BookingEventPayload struct {
	BookingID       string  `json:"booking_id"`
	Reference       string  `json:"reference"`
	CustomerID      string  `json:"customer_id"`
	AgentID         *string `json:"agent_id,omitempty"`
	OldStatus       string  `json:"old_status"`
	NewStatus       string  `json:"new_status"`
	CustomerMessage string  `json:"customer_message"`
	AgentMessage    string  `json:"agent_message,omitempty"`
}
