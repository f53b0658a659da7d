package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fieldserve-backend/internal/domains/coupon/model"
	"fieldserve-backend/internal/domains/coupon/repository"
	"fieldserve-backend/pkg/logger"
)

// =====================================================
// COUPON SERVICE IMPLEMENTATION
// =====================================================
type couponService struct {
	couponRepo repository.CouponRepository
	calculator *DiscountCalculator
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		calculator: NewDiscountCalculator(),
		now:        time.Now,
	}
}

// =====================================================
// VALIDATE
// =====================================================

// Validate runs the rejection checks in a fixed order and short-circuits
// on the first failure: exists, active, expiry, usage limit, minimum
// order, audience, per-customer ledger.
func (s *couponService) Validate(ctx context.Context, code string, orderValue decimal.Decimal, customerID uuid.UUID) (*model.ValidateCouponResponse, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return nil, model.ErrCouponInactive
	}

	if coupon.IsExpired(s.now()) {
		return nil, model.ErrCouponExpired
	}

	if !coupon.HasUsageLeft() {
		return nil, model.ErrCouponLimitReached
	}

	if orderValue.LessThan(coupon.MinOrderValue) {
		return nil, model.ErrCouponBelowMinimum
	}

	if !coupon.IsEligible(customerID) {
		return nil, model.ErrCouponNotEligible
	}

	if coupon.HasUsed(customerID) {
		return nil, model.ErrCouponAlreadyUsed
	}

	discount := s.calculator.Calculate(coupon, orderValue)

	return &model.ValidateCouponResponse{
		CouponID:   coupon.ID,
		Code:       coupon.Code,
		Discount:   discount,
		OrderValue: orderValue,
		Total:      s.calculator.Total(orderValue, discount),
	}, nil
}

// =====================================================
// REDEEM
// =====================================================

// Redeem delegates the race-sensitive part to the repository's single
// conditional update. When that update matches nothing we re-read the
// coupon once to tell the caller why.
func (s *couponService) Redeem(ctx context.Context, couponID, customerID uuid.UUID) error {
	redeemed, err := s.couponRepo.Redeem(ctx, couponID, customerID)
	if err != nil {
		return err
	}
	if redeemed {
		return nil
	}

	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return err
	}

	switch {
	case !coupon.IsActive:
		return model.ErrCouponInactive
	case coupon.IsExpired(s.now()):
		return model.ErrCouponExpired
	case coupon.HasUsed(customerID):
		return model.ErrCouponAlreadyUsed
	case !coupon.HasUsageLeft():
		return model.ErrCouponLimitReached
	default:
		return model.ErrCouponConflict
	}
}

// =====================================================
// ADMIN OPERATIONS
// =====================================================

func (s *couponService) CreateCoupon(ctx context.Context, req model.CreateCouponRequest) (*model.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.NormalizeCode()

	coupon := &model.Coupon{
		ID:            uuid.New(),
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		ExpiryDate:    req.ExpiryDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
		Audience:      req.Audience,
	}

	if req.TrackCustomers {
		coupon.UsedByCustomers = model.CustomerList{}
	}
	if req.Audience == string(model.AudienceSelected) {
		coupon.AllowedCustomers = model.CustomerList(req.AllowedCustomers)
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	logger.Info("coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})

	return coupon, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, couponID uuid.UUID, req model.UpdateCouponRequest) (*model.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}

	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinOrderValue != nil {
		coupon.MinOrderValue = *req.MinOrderValue
	}
	if req.MaxDiscount != nil {
		coupon.MaxDiscount = *req.MaxDiscount
	}
	if req.ExpiryDate != nil {
		coupon.ExpiryDate = req.ExpiryDate
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = req.UsageLimit
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if req.Audience != nil {
		coupon.Audience = *req.Audience
	}
	if req.AllowedCustomers != nil {
		coupon.AllowedCustomers = model.CustomerList(req.AllowedCustomers)
	}

	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *couponService) DeactivateCoupon(ctx context.Context, couponID uuid.UUID) error {
	return s.couponRepo.Deactivate(ctx, couponID)
}

func (s *couponService) GetCoupon(ctx context.Context, couponID uuid.UUID) (*model.Coupon, error) {
	return s.couponRepo.GetByID(ctx, couponID)
}

func (s *couponService) ListCoupons(ctx context.Context, req model.ListCouponsRequest) (*model.ListCouponsResponse, error) {
	req.Normalize()

	coupons, total, err := s.couponRepo.List(ctx, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.ListCouponsResponse{
		Coupons: coupons,
		Page:    req.Page,
		Limit:   req.Limit,
		Total:   total,
	}, nil
}
