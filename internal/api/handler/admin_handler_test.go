package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/api/handler"
	"github.com/housify/agent-platform/internal/api/middleware"
	"github.com/housify/agent-platform/internal/core/domain"
)

// asAdmin injects the principal the Auth middleware would have resolved.
func asAdmin(id string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := &domain.Principal{
				ID:    id,
				Role:  domain.RoleAdmin,
				Admin: &domain.Admin{ID: id, IsActive: true},
			}
			c.Set(middleware.CtxPrincipal, principal)
			c.Set(middleware.CtxRole, principal.Role)
			c.Set(middleware.CtxPrincipalID, principal.ID)
			return next(c)
		}
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	approval := &stubApprovalService{agent: &domain.Agent{
		ID:     "agent-1",
		Status: domain.StatusApproved,
	}}
	h := handler.NewAdminHandler(approval)

	e := newTestEcho()
	e.PUT("/admin/agents/:id/status", h.UpdateStatus, asAdmin("admin-1"))

	req := httptest.NewRequest(http.MethodPut, "/admin/agents/agent-1/status",
		strings.NewReader(`{"status":"approved","reason":"docs verified"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(e, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body)
	}
	if approval.transitionID != "agent-1" || approval.transitionTo != domain.StatusApproved {
		t.Errorf("transition args: id=%q to=%q", approval.transitionID, approval.transitionTo)
	}
	if approval.transitionReason != "docs verified" {
		t.Errorf("reason = %q", approval.transitionReason)
	}
	if approval.transitionActor != "admin-1" {
		t.Errorf("acting admin = %q, want the principal id", approval.transitionActor)
	}
}

func TestUpdateStatusHandlerRejectsUnknownStatus(t *testing.T) {
	h := handler.NewAdminHandler(&stubApprovalService{})

	e := newTestEcho()
	e.PUT("/admin/agents/:id/status", h.UpdateStatus, asAdmin("admin-1"))

	req := httptest.NewRequest(http.MethodPut, "/admin/agents/agent-1/status",
		strings.NewReader(`{"status":"banned"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(e, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestUpdateStatusHandlerDisallowedTransition(t *testing.T) {
	approval := &stubApprovalService{err: &domain.TransitionError{
		From: domain.StatusPending,
		To:   domain.StatusSuspended,
	}}
	h := handler.NewAdminHandler(approval)

	e := newTestEcho()
	e.PUT("/admin/agents/:id/status", h.UpdateStatus, asAdmin("admin-1"))

	req := httptest.NewRequest(http.MethodPut, "/admin/agents/agent-1/status",
		strings.NewReader(`{"status":"suspended"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(e, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pending") || !strings.Contains(rec.Body.String(), "suspended") {
		t.Errorf("error should name both statuses: %s", rec.Body)
	}
}

func TestUpdateStatusHandlerWithoutPrincipal(t *testing.T) {
	h := handler.NewAdminHandler(&stubApprovalService{})

	e := newTestEcho()
	e.PUT("/admin/agents/:id/status", h.UpdateStatus)

	req := httptest.NewRequest(http.MethodPut, "/admin/agents/agent-1/status",
		strings.NewReader(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(e, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401 for an unwired route", rec.Code)
	}
}

func TestDeleteAgentHandler(t *testing.T) {
	approval := &stubApprovalService{}
	h := handler.NewAdminHandler(approval)

	e := newTestEcho()
	e.DELETE("/admin/agents/:id", h.Delete, asAdmin("admin-1"))

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/admin/agents/agent-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body)
	}
	if approval.deletedID != "agent-1" {
		t.Errorf("deleted id = %q", approval.deletedID)
	}
}

func TestDeleteAgentHandlerNotFound(t *testing.T) {
	h := handler.NewAdminHandler(&stubApprovalService{err: domain.ErrAgentNotFound})

	e := newTestEcho()
	e.DELETE("/admin/agents/:id", h.Delete, asAdmin("admin-1"))

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/admin/agents/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}

func TestListAgentsHandler(t *testing.T) {
	approval := &stubApprovalService{agent: &domain.Agent{ID: "agent-1", Status: domain.StatusPending}}
	h := handler.NewAdminHandler(approval)

	e := newTestEcho()
	e.GET("/admin/agents", h.ListAgents, asAdmin("admin-1"))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin/agents?status=pending&page=1&limit=20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"pagination"`) {
		t.Errorf("expected pagination metadata: %s", rec.Body)
	}
}

func TestStatsHandler(t *testing.T) {
	h := handler.NewAdminHandler(&stubApprovalService{})

	e := newTestEcho()
	e.GET("/admin/agents/stats", h.Stats, asAdmin("admin-1"))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin/agents/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("body = %s", rec.Body)
	}
}
