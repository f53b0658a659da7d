package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/coupon/model"
)

// fakeCouponRepo is an in-memory CouponRepository whose Redeem keeps the
// real one's all-or-nothing semantics: the guards and the mutation happen
// under a single lock, so concurrent redeems behave like the conditional
// UPDATE does.
type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[uuid.UUID]*model.Coupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[uuid.UUID]*model.Coupon)}
}

func copyCoupon(c *model.Coupon) *model.Coupon {
	clone := *c
	if c.UsedByCustomers != nil {
		clone.UsedByCustomers = append(model.CustomerList{}, c.UsedByCustomers...)
	}
	if c.AllowedCustomers != nil {
		clone.AllowedCustomers = append(model.CustomerList{}, c.AllowedCustomers...)
	}
	return &clone
}

func (r *fakeCouponRepo) Create(_ context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.coupons {
		if existing.Code == coupon.Code {
			return model.ErrDuplicateCode
		}
	}
	r.coupons[coupon.ID] = copyCoupon(coupon)
	return nil
}

func (r *fakeCouponRepo) Update(_ context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[coupon.ID]; !ok {
		return model.ErrCouponNotFound
	}
	r.coupons[coupon.ID] = copyCoupon(coupon)
	return nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, couponID uuid.UUID) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.coupons[couponID]
	if !ok {
		return nil, model.ErrCouponNotFound
	}
	return copyCoupon(coupon), nil
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, coupon := range r.coupons {
		if strings.EqualFold(coupon.Code, code) {
			return copyCoupon(coupon), nil
		}
	}
	return nil, model.ErrCouponNotFound
}

func (r *fakeCouponRepo) List(_ context.Context, page, limit int) ([]model.Coupon, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Coupon, 0, len(r.coupons))
	for _, coupon := range r.coupons {
		all = append(all, *copyCoupon(coupon))
	}
	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []model.Coupon{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *fakeCouponRepo) Deactivate(_ context.Context, couponID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.coupons[couponID]
	if !ok {
		return model.ErrCouponNotFound
	}
	coupon.IsActive = false
	return nil
}

func (r *fakeCouponRepo) Redeem(_ context.Context, couponID, customerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.coupons[couponID]
	if !ok {
		return false, model.ErrCouponNotFound
	}
	if !coupon.IsActive || coupon.IsExpired(time.Now()) || !coupon.HasUsageLeft() {
		return false, nil
	}
	if coupon.UsedByCustomers != nil && coupon.UsedByCustomers.Contains(customerID) {
		return false, nil
	}
	if coupon.UsedByCustomers != nil {
		coupon.UsedByCustomers = append(coupon.UsedByCustomers, customerID)
	}
	coupon.TimesUsed++
	return true, nil
}

// seedCoupon stores a 20% off, cap 10 coupon and returns its id
func seedCoupon(r *fakeCouponRepo, mutate func(*model.Coupon)) *model.Coupon {
	coupon := &model.Coupon{
		ID:            uuid.New(),
		Code:          "WELCOME20",
		DiscountType:  string(model.DiscountTypePercentage),
		DiscountValue: decimal.NewFromInt(20),
		MinOrderValue: decimal.NewFromInt(50),
		MaxDiscount:   decimal.NewFromInt(10),
		IsActive:      true,
		Audience:      string(model.AudienceAll),
	}
	if mutate != nil {
		mutate(coupon)
	}
	r.coupons[coupon.ID] = coupon
	return coupon
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }
