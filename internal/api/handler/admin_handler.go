package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/api/metrics"
	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

// AdminHandler serves the admin-only agent moderation surface. Every route is
// behind the Auth middleware plus RequireAdmin.
type AdminHandler struct {
	approval ports.ApprovalService
}

func NewAdminHandler(approval ports.ApprovalService) *AdminHandler {
	return &AdminHandler{approval: approval}
}

// Me returns the acting admin's profile.
//
// @Summary      Current admin profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /admin/me [get]
func (h *AdminHandler) Me(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"admin":   principal.Admin,
	})
}

// ListAgents returns a page of agents, optionally filtered by status.
//
// @Summary      List agents
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending|approved|rejected|suspended"
// @Param        page    query     int     false  "1-based page"
// @Param        limit   query     int     false  "rows per page (max 100)"
// @Success      200     {object}  map[string]any
// @Router       /admin/agents [get]
func (h *AdminHandler) ListAgents(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.approval.ListAgents(c.Request().Context(), ports.AgentListFilter{
		Status: domain.AgentStatus(c.QueryParam("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"agents":  result.Agents,
		"pagination": map[string]any{
			"total":       result.Total,
			"page":        result.Page,
			"limit":       result.Limit,
			"total_pages": result.TotalPages,
		},
	})
}

// ListPending returns the pending applications awaiting review.
//
// @Summary      List pending applications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /admin/agents/pending [get]
func (h *AdminHandler) ListPending(c echo.Context) error {
	agents, err := h.approval.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"agents":  agents,
	})
}

// Stats returns agent counts by status.
//
// @Summary      Agent statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /admin/agents/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.approval.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected suspended"`
	Reason string `json:"reason"`
}

// UpdateStatus moves an agent through the approval state machine.
//
// @Summary      Update agent status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Agent id"
// @Param        body  body      statusUpdateRequest  true  "Requested status"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /admin/agents/{id}/status [put]
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	agent, err := h.approval.Transition(
		c.Request().Context(),
		c.Param("id"),
		domain.AgentStatus(req.Status),
		req.Reason,
		principal.ID,
	)
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(agent.Status)).Inc()
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Agent " + req.Status + " successfully",
		"agent":   agent,
	})
}

// Delete permanently removes an agent and releases its stored documents.
//
// @Summary      Delete agent
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Agent id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /admin/agents/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	if err := h.approval.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Agent deleted successfully",
	})
}
