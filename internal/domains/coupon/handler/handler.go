package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/coupon/model"
	"fieldserve-backend/internal/domains/coupon/service"
	"fieldserve-backend/internal/shared/response"
)

// =====================================================
// COUPON HANDLER
// =====================================================
type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// RegisterCustomerRoutes registers the customer-facing quote endpoint
func (h *CouponHandler) RegisterCustomerRoutes(router *gin.RouterGroup) {
	coupons := router.Group("/coupons")
	{
		coupons.POST("/validate", h.ValidateCoupon) // POST /v1/coupons/validate
	}
}

// RegisterAdminRoutes registers the admin coupon management endpoints
func (h *CouponHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin/coupons")
	{
		admin.POST("", h.CreateCoupon)           // POST /v1/admin/coupons
		admin.GET("", h.ListCoupons)             // GET /v1/admin/coupons
		admin.GET("/:id", h.GetCoupon)           // GET /v1/admin/coupons/:id
		admin.PATCH("/:id", h.UpdateCoupon)      // PATCH /v1/admin/coupons/:id
		admin.DELETE("/:id", h.DeactivateCoupon) // DELETE /v1/admin/coupons/:id (soft)
	}
}

// =====================================================
// CUSTOMER ENDPOINTS
// =====================================================

func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	customerID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req model.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.NormalizeCode()
	req.CustomerID = customerID

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed), "validation failed", err)
		return
	}

	quote, err := h.couponService.Validate(c.Request.Context(), req.Code, req.OrderValue, customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, quote)
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.NormalizeCode()

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed), "validation failed", err)
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, coupon)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	var req model.ListCouponsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.couponService.ListCoupons(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Coupons, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

func (h *CouponHandler) GetCoupon(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	coupon, err := h.couponService.GetCoupon(c.Request.Context(), couponID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	var req model.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed), "validation failed", err)
		return
	}

	coupon, err := h.couponService.UpdateCoupon(c.Request.Context(), couponID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	if err := h.couponService.DeactivateCoupon(c.Request.Context(), couponID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

// =====================================================
// ERROR MAPPING
// =====================================================

func (h *CouponHandler) respondError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		return
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed), "validation failed", validationErrs)
		return
	}

	if errors.Is(err, model.ErrDuplicateCode) {
		response.ErrorResponse(c, http.StatusBadRequest, string(model.ErrCodeCouponDuplicateCode), err.Error())
		return
	}

	response.InternalServerError(c, "internal server error")
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
