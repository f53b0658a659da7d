package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fieldserve-backend/internal/domains/booking/model"
)

// =====================================================
// BOOKING REPOSITORY INTERFACE
// =====================================================
//
// Every state-changing method is a single conditional update keyed on the
// expected prior state. Zero rows matched means another writer got there
// first; those methods return model.ErrConflict and callers re-read to
// classify.
type BookingRepository interface {
	// Transaction management
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// Booking operations
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	GetByIDAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Booking, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)

	// Reference sequence (counter-backed, collision-free)
	NextReferenceSeq(ctx context.Context) (int64, error)

	// Conditional status updates
	TransitionStatus(ctx context.Context, bookingID uuid.UUID, from, to model.BookingStatus, entry model.TimelineEntry) error
	CompleteWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, entry model.TimelineEntry) error

	// Conditional agent binding
	AssignAgent(ctx context.Context, bookingID, agentID uuid.UUID, agentName string, entry model.TimelineEntry) error
	AcceptByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error
	RejectByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error

	// List operations
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]model.Booking, int, error)
}
