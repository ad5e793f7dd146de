package ports

import (
	"context"

	"github.com/housify/agent-platform/internal/core/domain"
)

// AgentStats is the counts-by-status view over the agent collection.
type AgentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Suspended int64 `json:"suspended"`
}

// AgentPage is one page of the admin agent listing.
type AgentPage struct {
	Agents     []*domain.Agent `json:"agents"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ApprovalService is the admin-only workflow over an agent's status, plus the
// read-only views derived from the same store.
type ApprovalService interface {
	// Transition moves an agent through the status state machine. Disallowed
	// moves fail with *domain.TransitionError naming the current and requested
	// status; a concurrent admin action that wins the conditional write makes
	// the loser fail the same way rather than silently overwriting.
	Transition(ctx context.Context, agentID string, requested domain.AgentStatus, reason, adminID string) (*domain.Agent, error)
	// UpdateProfile applies a self-or-admin profile edit.
	UpdateProfile(ctx context.Context, agentID string, upd AgentProfileUpdate) (*domain.Agent, error)
	// Delete removes the agent record after releasing its stored documents
	// best-effort: individual storage failures are logged, never blocking.
	Delete(ctx context.Context, agentID string) error
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	ListAgents(ctx context.Context, filter AgentListFilter) (*AgentPage, error)
	ListPending(ctx context.Context) ([]*domain.Agent, error)
	Stats(ctx context.Context) (*AgentStats, error)
}
