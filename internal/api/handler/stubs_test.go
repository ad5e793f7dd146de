package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/housify/agent-platform/internal/api"
	"github.com/housify/agent-platform/internal/api/handler"
	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

// newTestEcho wires the validator and error handler exactly like the router
// does, so handler tests observe the real response envelopes.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type stubAuthService struct {
	loginResult *ports.LoginResult
	loginErr    error
	lastEmail   string
	adminOnly   bool
}

func (s *stubAuthService) Login(_ context.Context, email, _ string) (*ports.LoginResult, error) {
	s.lastEmail = email
	s.adminOnly = false
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) AdminLogin(_ context.Context, email, _ string) (*ports.LoginResult, error) {
	s.lastEmail = email
	s.adminOnly = true
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) ResolveByID(context.Context, string, string) (*domain.Principal, error) {
	return nil, domain.ErrPrincipalNotFound
}

type stubRegistrationService struct {
	agent     *domain.Agent
	user      *domain.User
	err       error
	lastInput ports.RegisterAgentInput
	status    domain.AgentStatus
}

func (s *stubRegistrationService) RegisterAgent(_ context.Context, input ports.RegisterAgentInput) (*domain.Agent, error) {
	s.lastInput = input
	return s.agent, s.err
}

func (s *stubRegistrationService) RegisterUser(context.Context, ports.RegisterUserInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubRegistrationService) ApplicationStatus(context.Context, string) (domain.AgentStatus, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return s.status, s.status.Message(), nil
}

type stubApprovalService struct {
	agent *domain.Agent
	err   error

	transitionID     string
	transitionTo     domain.AgentStatus
	transitionReason string
	transitionActor  string
	deletedID        string
}

func (s *stubApprovalService) Transition(_ context.Context, agentID string, requested domain.AgentStatus, reason, adminID string) (*domain.Agent, error) {
	s.transitionID = agentID
	s.transitionTo = requested
	s.transitionReason = reason
	s.transitionActor = adminID
	return s.agent, s.err
}

func (s *stubApprovalService) UpdateProfile(context.Context, string, ports.AgentProfileUpdate) (*domain.Agent, error) {
	return s.agent, s.err
}

func (s *stubApprovalService) Delete(_ context.Context, agentID string) error {
	s.deletedID = agentID
	return s.err
}

func (s *stubApprovalService) GetAgent(context.Context, string) (*domain.Agent, error) {
	return s.agent, s.err
}

func (s *stubApprovalService) ListAgents(context.Context, ports.AgentListFilter) (*ports.AgentPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.AgentPage{Agents: []*domain.Agent{s.agent}, Total: 1, Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *stubApprovalService) ListPending(context.Context) ([]*domain.Agent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.Agent{s.agent}, nil
}

func (s *stubApprovalService) Stats(context.Context) (*ports.AgentStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.AgentStats{Total: 1, Pending: 1}, nil
}
