package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/agent/model"
	"fieldserve-backend/internal/domains/agent/service"
	"fieldserve-backend/internal/shared/response"
)

// =====================================================
// AGENT HANDLER
// =====================================================
type AgentHandler struct {
	agentService service.AgentService
}

func NewAgentHandler(agentService service.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// RegisterAgentRoutes registers the agent self-service endpoints
func (h *AgentHandler) RegisterAgentRoutes(router *gin.RouterGroup) {
	agent := router.Group("/agent")
	{
		agent.GET("/me", h.GetProfile)           // GET /v1/agent/me
		agent.GET("/me/stats", h.GetStats)       // GET /v1/agent/me/stats
		agent.PUT("/me/presence", h.SetPresence) // PUT /v1/agent/me/presence
	}
}

// RegisterAdminRoutes registers admin lookups on agents
func (h *AgentHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin/agents")
	{
		admin.GET("/:id", h.GetAgent) // GET /v1/admin/agents/:id
	}
}

func (h *AgentHandler) GetProfile(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	agent, err := h.agentService.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, agent)
}

func (h *AgentHandler) GetStats(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	stats, err := h.agentService.GetStats(c.Request.Context(), agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

type setPresenceRequest struct {
	Online bool `json:"online"`
}

func (h *AgentHandler) SetPresence(c *gin.Context) {
	agentID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req setPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.agentService.SetOnline(c.Request.Context(), agentID, req.Online); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"online": req.Online})
}

func (h *AgentHandler) GetAgent(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid agent id")
		return
	}

	agent, err := h.agentService.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, agent)
}

func (h *AgentHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrAgentNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeAgentNotFound, err.Error())
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
