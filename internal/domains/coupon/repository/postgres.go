package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldserve-backend/internal/domains/coupon/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresCouponRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &postgresCouponRepository{
		pool: pool,
	}
}

const couponColumns = `
	id, code, discount_type, discount_value, min_order_value, max_discount,
	expiry_date, usage_limit, times_used, is_active,
	used_by_customers, audience, allowed_customers,
	created_at, updated_at
`

func (r *postgresCouponRepository) scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinOrderValue,
		&c.MaxDiscount,
		&c.ExpiryDate,
		&c.UsageLimit,
		&c.TimesUsed,
		&c.IsActive,
		&c.UsedByCustomers,
		&c.Audience,
		&c.AllowedCustomers,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}
	return &c, nil
}

// =====================================================
// CREATE / UPDATE
// =====================================================

func (r *postgresCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (
			id, code, discount_type, discount_value, min_order_value, max_discount,
			expiry_date, usage_limit, is_active,
			used_by_customers, audience, allowed_customers
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinOrderValue,
		coupon.MaxDiscount,
		coupon.ExpiryDate,
		coupon.UsageLimit,
		coupon.IsActive,
		coupon.UsedByCustomers,
		coupon.Audience,
		coupon.AllowedCustomers,
	).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation on the code index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *postgresCouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		SET discount_value = $1,
			min_order_value = $2,
			max_discount = $3,
			expiry_date = $4,
			usage_limit = $5,
			is_active = $6,
			audience = $7,
			allowed_customers = $8,
			updated_at = NOW()
		WHERE id = $9
	`

	result, err := r.pool.Exec(ctx, query,
		coupon.DiscountValue,
		coupon.MinOrderValue,
		coupon.MaxDiscount,
		coupon.ExpiryDate,
		coupon.UsageLimit,
		coupon.IsActive,
		coupon.Audience,
		coupon.AllowedCustomers,
		coupon.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// =====================================================
// GET / LIST
// =====================================================

func (r *postgresCouponRepository) GetByID(ctx context.Context, couponID uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return r.scanCoupon(r.pool.QueryRow(ctx, query, couponID))
}

func (r *postgresCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	// codes are stored uppercase
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	return r.scanCoupon(r.pool.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(code))))
}

func (r *postgresCouponRepository) List(ctx context.Context, page, limit int) ([]model.Coupon, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		c, err := r.scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		coupons = append(coupons, *c)
	}

	return coupons, total, rows.Err()
}

func (r *postgresCouponRepository) Deactivate(ctx context.Context, couponID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE coupons SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		couponID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// =====================================================
// REDEEM
// =====================================================

// Redeem is one conditional update: ledger append and counter increment
// cannot be observed separately, which is what closes the double-redeem
// race. The WHERE clause re-checks the usage limit and ledger so two
// concurrent redeems for the same (coupon, customer) cannot both match.
func (r *postgresCouponRepository) Redeem(ctx context.Context, couponID, customerID uuid.UUID) (bool, error) {
	query := `
		UPDATE coupons
		SET times_used = times_used + 1,
			used_by_customers = CASE
				WHEN used_by_customers IS NULL THEN NULL
				ELSE used_by_customers || to_jsonb($2::text)
			END,
			updated_at = NOW()
		WHERE id = $1
		  AND is_active = TRUE
		  AND (expiry_date IS NULL OR expiry_date > NOW())
		  AND (usage_limit IS NULL OR times_used < usage_limit)
		  AND (used_by_customers IS NULL OR NOT used_by_customers @> to_jsonb($2::text))
	`

	result, err := r.pool.Exec(ctx, query, couponID, customerID.String())
	if err != nil {
		return false, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
