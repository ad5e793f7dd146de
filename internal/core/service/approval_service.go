package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ApprovalService drives the admin-only agent status workflow and the
// read-only views derived from the agent store.
type ApprovalService struct {
	agents ports.AgentRepository
	docs   ports.DocumentStore
	mailer ports.Mailer
	log    zerolog.Logger
}

func NewApprovalService(
	agents ports.AgentRepository,
	docs ports.DocumentStore,
	mailer ports.Mailer,
	log zerolog.Logger,
) *ApprovalService {
	return &ApprovalService{agents: agents, docs: docs, mailer: mailer, log: log}
}

// Transition moves an agent through the status state machine.
func (s *ApprovalService) Transition(ctx context.Context, agentID string, requested domain.AgentStatus, reason, adminID string) (*domain.Agent, error) {
	if !requested.IsValid() {
		return nil, &domain.ValidationError{Fields: []string{fmt.Sprintf("unknown status %q", requested)}}
	}

	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if !agent.Status.CanTransitionTo(requested) {
		return nil, &domain.TransitionError{From: agent.Status, To: requested}
	}

	// Conditional write keyed on the status we just read: if another admin's
	// transition lands first, this one loses with a TransitionError instead of
	// silently overwriting.
	updated, err := s.agents.UpdateStatus(ctx, agentID, agent.Status, ports.AgentStatusUpdate{
		Status:    requested,
		Reason:    reason,
		UpdatedBy: adminID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			current, findErr := s.agents.FindByID(ctx, agentID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, &domain.TransitionError{From: current.Status, To: requested}
		}
		return nil, err
	}

	s.log.Info().
		Str("agent_id", agentID).
		Str("from", string(agent.Status)).
		Str("to", string(requested)).
		Str("admin_id", adminID).
		Msg("agent status updated")

	s.notifyDecision(updated)

	return updated, nil
}

// UpdateProfile applies a self-or-admin edit of the agent's profile fields.
func (s *ApprovalService) UpdateProfile(ctx context.Context, agentID string, upd ports.AgentProfileUpdate) (*domain.Agent, error) {
	return s.agents.UpdateProfile(ctx, agentID, upd)
}

// Delete removes the agent record permanently. Stored documents are released
// first; individual storage failures are logged and skipped so a partial
// storage outage never blocks the record deletion.
func (s *ApprovalService) Delete(ctx context.Context, agentID string) error {
	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		return err
	}

	for _, ref := range agent.DocumentRefs() {
		if err := s.docs.Remove(ctx, ref); err != nil {
			s.log.Warn().Err(err).Str("agent_id", agentID).Str("ref", ref).Msg("failed to release document")
		}
	}

	if err := s.agents.Delete(ctx, agentID); err != nil {
		return err
	}

	s.log.Info().Str("agent_id", agentID).Msg("agent deleted")
	return nil
}

func (s *ApprovalService) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	return s.agents.FindByID(ctx, agentID)
}

// ListAgents returns a page of agents, optionally filtered by status.
func (s *ApprovalService) ListAgents(ctx context.Context, filter ports.AgentListFilter) (*ports.AgentPage, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, &domain.ValidationError{Fields: []string{fmt.Sprintf("unknown status %q", filter.Status)}}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	agents, total, err := s.agents.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.AgentPage{
		Agents:     agents,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListPending returns every pending application, newest first.
func (s *ApprovalService) ListPending(ctx context.Context) ([]*domain.Agent, error) {
	agents, _, err := s.agents.List(ctx, ports.AgentListFilter{
		Status: domain.StatusPending,
		Page:   1,
		Limit:  maxPageLimit,
	})
	return agents, err
}

// Stats returns counts by status over the whole agent collection.
func (s *ApprovalService) Stats(ctx context.Context) (*ports.AgentStats, error) {
	counts, err := s.agents.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.AgentStats{
		Pending:   counts[domain.StatusPending],
		Approved:  counts[domain.StatusApproved],
		Rejected:  counts[domain.StatusRejected],
		Suspended: counts[domain.StatusSuspended],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected + stats.Suspended
	return stats, nil
}

// notifyDecision mails the applicant about an approval or rejection.
// Fire-and-forget: delivery problems are the mail transport's concern.
func (s *ApprovalService) notifyDecision(agent *domain.Agent) {
	if s.mailer == nil {
		return
	}
	if agent.Status != domain.StatusApproved && agent.Status != domain.StatusRejected {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mailer.SendDecision(ctx, agent.Email, agent.FullName, string(agent.Status), agent.StatusReason); err != nil {
			s.log.Warn().Err(err).Str("agent_id", agent.ID).Msg("failed to send decision mail")
		}
	}()
}
