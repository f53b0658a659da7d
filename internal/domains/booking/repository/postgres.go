package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldserve-backend/internal/domains/booking/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &postgresBookingRepository{
		pool: pool,
	}
}

// =====================================================
// TRANSACTION MANAGEMENT
// =====================================================

func (r *postgresBookingRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresBookingRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresBookingRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, customer_id, service_id,
			subtotal, discount, tax, total, coupon_code,
			payment_method, payment_status, status, timeline, customer_note
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		booking.ID,
		booking.Reference,
		booking.CustomerID,
		booking.ServiceID,
		booking.Subtotal,
		booking.Discount,
		booking.Tax,
		booking.Total,
		booking.CouponCode,
		booking.PaymentMethod,
		booking.PaymentStatus,
		booking.Status,
		booking.Timeline,
		booking.CustomerNote,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// =====================================================
// GET
// =====================================================

const bookingColumns = `
	id, reference, customer_id, agent_id, agent_name, service_id,
	subtotal, discount, tax, total, coupon_code,
	payment_method, payment_status, status, timeline, customer_note,
	created_at, updated_at
`

func (r *postgresBookingRepository) scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.CustomerID,
		&b.AgentID,
		&b.AgentName,
		&b.ServiceID,
		&b.Subtotal,
		&b.Discount,
		&b.Tax,
		&b.Total,
		&b.CouponCode,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.Status,
		&b.Timeline,
		&b.CustomerNote,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return &b, nil
}

func (r *postgresBookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.pool.QueryRow(ctx, query, bookingID))
}

func (r *postgresBookingRepository) GetByIDAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND customer_id = $2`
	return r.scanBooking(r.pool.QueryRow(ctx, query, bookingID, customerID))
}

func (r *postgresBookingRepository) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return r.scanBooking(r.pool.QueryRow(ctx, query, reference))
}

// =====================================================
// REFERENCE SEQUENCE
// =====================================================

func (r *postgresBookingRepository) NextReferenceSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('booking_reference_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to advance booking reference sequence: %w", err)
	}
	return seq, nil
}

// =====================================================
// CONDITIONAL STATUS UPDATES
// =====================================================

func marshalEntry(entry model.TimelineEntry) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline entry: %w", err)
	}
	return payload, nil
}

// TransitionStatus flips status and appends the timeline entry in one
// statement. The WHERE clause on the prior status is the compare-and-swap:
// two concurrent conflicting transitions cannot both match.
func (r *postgresBookingRepository) TransitionStatus(ctx context.Context, bookingID uuid.UUID, from, to model.BookingStatus, entry model.TimelineEntry) error {
	payload, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	query := `
		UPDATE bookings
		SET status = $1,
			timeline = timeline || $2::jsonb,
			updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, to.String(), payload, bookingID, from.String())
	if err != nil {
		return fmt.Errorf("failed to transition booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrConflict
	}

	return nil
}

// CompleteWithTx is the single place where payment_status is forced to paid.
// It runs inside the same transaction as the agent earnings credit so the
// two cannot diverge.
func (r *postgresBookingRepository) CompleteWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, entry model.TimelineEntry) error {
	payload, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	query := `
		UPDATE bookings
		SET status = $1,
			payment_status = $2,
			timeline = timeline || $3::jsonb,
			updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := tx.Exec(ctx, query,
		model.BookingStatusCompleted.String(),
		model.PaymentStatusPaid.String(),
		payload,
		bookingID,
		model.BookingStatusInProgress.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrConflict
	}

	return nil
}

// =====================================================
// CONDITIONAL AGENT BINDING
// =====================================================

// AssignAgent binds the agent and forces the booking back to pending,
// modelling "awaiting acceptance". Only allowed before work has started.
func (r *postgresBookingRepository) AssignAgent(ctx context.Context, bookingID, agentID uuid.UUID, agentName string, entry model.TimelineEntry) error {
	payload, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	query := `
		UPDATE bookings
		SET agent_id = $1,
			agent_name = $2,
			status = $3,
			timeline = timeline || $4::jsonb,
			updated_at = NOW()
		WHERE id = $5 AND status IN ($6, $7)
	`

	result, err := r.pool.Exec(ctx, query,
		agentID,
		agentName,
		model.BookingStatusPending.String(),
		payload,
		bookingID,
		model.BookingStatusPending.String(),
		model.BookingStatusAccepted.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to assign agent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrConflict
	}

	return nil
}

// AcceptByAgent succeeds only for the bound agent on a still-pending
// booking. Two agents racing on the same booking: at most one row matches.
func (r *postgresBookingRepository) AcceptByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error {
	payload, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	query := `
		UPDATE bookings
		SET status = $1,
			timeline = timeline || $2::jsonb,
			updated_at = NOW()
		WHERE id = $3 AND status = $4 AND agent_id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		model.BookingStatusAccepted.String(),
		payload,
		bookingID,
		model.BookingStatusPending.String(),
		agentID,
	)
	if err != nil {
		return fmt.Errorf("failed to accept booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrConflict
	}

	return nil
}

// RejectByAgent unbinds the agent and cancels the booking in one statement.
func (r *postgresBookingRepository) RejectByAgent(ctx context.Context, bookingID, agentID uuid.UUID, entry model.TimelineEntry) error {
	payload, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	query := `
		UPDATE bookings
		SET agent_id = NULL,
			agent_name = NULL,
			status = $1,
			timeline = timeline || $2::jsonb,
			updated_at = NOW()
		WHERE id = $3 AND status = $4 AND agent_id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		model.BookingStatusCancelled.String(),
		payload,
		bookingID,
		model.BookingStatusPending.String(),
		agentID,
	)
	if err != nil {
		return fmt.Errorf("failed to reject booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrConflict
	}

	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresBookingRepository) list(ctx context.Context, where string, args []interface{}, page, limit int) ([]model.Booking, int, error) {
	countQuery := `SELECT COUNT(*) FROM bookings ` + where

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(
		`SELECT %s FROM bookings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2,
	)
	listArgs := append(args, limit, offset)

	rows, err := r.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, total, rows.Err()
}

func (r *postgresBookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error) {
	where := `WHERE customer_id = $1`
	args := []interface{}{customerID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}
	return r.list(ctx, where, args, page, limit)
}

func (r *postgresBookingRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, status string, page, limit int) ([]model.Booking, int, error) {
	where := `WHERE agent_id = $1`
	args := []interface{}{agentID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}
	return r.list(ctx, where, args, page, limit)
}

func (r *postgresBookingRepository) ListAll(ctx context.Context, status string, page, limit int) ([]model.Booking, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = `WHERE status = $1`
		args = append(args, status)
	}
	return r.list(ctx, where, args, page, limit)
}
