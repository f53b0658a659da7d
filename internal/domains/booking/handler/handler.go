package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	agentModel "fieldserve-backend/internal/domains/agent/model"
	"fieldserve-backend/internal/domains/booking/model"
	"fieldserve-backend/internal/domains/booking/service"
	couponModel "fieldserve-backend/internal/domains/coupon/model"
	"fieldserve-backend/internal/shared/response"
)

// =====================================================
// BOOKING HANDLER
// =====================================================
type BookingHandler struct {
	bookingService    service.BookingService
	assignmentService service.AssignmentService
}

func NewBookingHandler(bookingService service.BookingService, assignmentService service.AssignmentService) *BookingHandler {
	return &BookingHandler{
		bookingService:    bookingService,
		assignmentService: assignmentService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterCustomerRoutes registers routes behind the customer auth gate
func (h *BookingHandler) RegisterCustomerRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)                      // POST /v1/bookings
		bookings.GET("", h.ListMyBookings)                      // GET /v1/bookings?page=1&status=pending
		bookings.GET("/:id", h.GetBooking)                      // GET /v1/bookings/:id
		bookings.GET("/reference/:reference", h.GetByReference) // GET /v1/bookings/reference/FSV-2026-0001
		bookings.PATCH("/:id/cancel", h.CancelBooking)          // PATCH /v1/bookings/:id/cancel
	}
}

// RegisterAgentRoutes registers routes behind the agent role gate
func (h *BookingHandler) RegisterAgentRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/agent/bookings")
	{
		jobs.GET("", h.ListAgentBookings)            // GET /v1/agent/bookings
		jobs.POST("/:id/accept", h.AcceptBooking)    // POST /v1/agent/bookings/:id/accept
		jobs.POST("/:id/reject", h.RejectBooking)    // POST /v1/agent/bookings/:id/reject
		jobs.PATCH("/:id/status", h.AgentTransition) // PATCH /v1/agent/bookings/:id/status
	}
}

// RegisterAdminRoutes registers routes behind the admin role gate
func (h *BookingHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin/bookings")
	{
		admin.GET("", h.ListAllBookings)         // GET /v1/admin/bookings
		admin.POST("/:id/assign", h.AssignAgent) // POST /v1/admin/bookings/:id/assign
		admin.PATCH("/:id/status", h.AdminTransition)
	}
}

// =====================================================
// CUSTOMER ENDPOINTS
// =====================================================

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	customerID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), customerID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	customerID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req model.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.bookingService.ListCustomerBookings(c.Request.Context(), customerID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Bookings, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) GetByReference(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	booking, err := h.bookingService.GetBookingByReference(c.Request.Context(), c.Param("reference"), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	customerID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req model.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidationFailed, "validation failed", err)
		return
	}

	booking, err := h.bookingService.CancelByCustomer(c.Request.Context(), bookingID, customerID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// =====================================================
// AGENT ENDPOINTS
// =====================================================

func (h *BookingHandler) ListAgentBookings(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req model.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.bookingService.ListAgentBookings(c.Request.Context(), agentID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Bookings, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	booking, err := h.assignmentService.Accept(c.Request.Context(), bookingID, agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) RejectBooking(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req model.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidationFailed, "validation failed", err)
		return
	}

	booking, err := h.assignmentService.Reject(c.Request.Context(), bookingID, agentID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) AgentTransition(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	h.transition(c, model.Actor{ID: agentID, Role: model.ActorAgent})
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

func (h *BookingHandler) ListAllBookings(c *gin.Context) {
	var req model.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.bookingService.ListAllBookings(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Bookings, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

func (h *BookingHandler) AssignAgent(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req model.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidationFailed, "validation failed", err)
		return
	}

	booking, err := h.assignmentService.Assign(c.Request.Context(), bookingID, req.AgentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) AdminTransition(c *gin.Context) {
	adminID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	h.transition(c, model.Actor{ID: adminID, Role: model.ActorAdmin})
}

// transition is the shared body of the agent and admin status endpoints
func (h *BookingHandler) transition(c *gin.Context, actor model.Actor) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidationFailed, "validation failed", err)
		return
	}

	note := ""
	if req.Note != nil {
		note = *req.Note
	}

	booking, err := h.bookingService.Transition(c.Request.Context(), bookingID, model.BookingStatus(req.Status), actor, note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// =====================================================
// ERROR MAPPING
// =====================================================

// respondError maps domain errors to stable codes and HTTP statuses
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var couponErr *couponModel.AppError
	if errors.As(err, &couponErr) {
		response.ErrorResponse(c, couponErr.HTTPStatus, string(couponErr.Code), couponErr.Message)
		return
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidationFailed, "validation failed", validationErrs)
		return
	}

	switch {
	case errors.Is(err, model.ErrBookingNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeBookingNotFound, err.Error())
	case errors.Is(err, agentModel.ErrAgentNotFound):
		response.ErrorResponse(c, http.StatusNotFound, agentModel.ErrCodeAgentNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrInvalidStatus):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, model.ErrAgentNotActive):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeAgentNotActive, err.Error())
	case errors.Is(err, model.ErrNotCancellable):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeNotCancellable, err.Error())
	case errors.Is(err, model.ErrNotAssignable):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeNotAssignable, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, model.ErrConflict):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeConflict, err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}

// =====================================================
// CONTEXT HELPERS
// =====================================================

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func actorFromContext(c *gin.Context) (model.Actor, bool) {
	id, ok := userIDFromContext(c)
	if !ok {
		return model.Actor{}, false
	}

	role := model.ActorCustomer
	if v, exists := c.Get("role"); exists {
		switch v {
		case "admin":
			role = model.ActorAdmin
		case "agent":
			role = model.ActorAgent
		}
	}

	return model.Actor{ID: id, Role: role}, true
}
