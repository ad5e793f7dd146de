package ports

import (
	"context"

	"github.com/housify/agent-platform/internal/core/domain"
)

// AdminRepository defines persistence operations for back-office admins.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	FindByID(ctx context.Context, id string) (*domain.Admin, error)
	// RecordLogin updates last_login for a successful authentication.
	RecordLogin(ctx context.Context, id string) error
}

// AgentListFilter carries the query parameters for the admin agent listing.
type AgentListFilter struct {
	Status domain.AgentStatus // zero value = all statuses
	Page   int                // 1-based
	Limit  int                // rows per page, capped by the service
}

// AgentStatusUpdate is the record written by a status transition.
type AgentStatusUpdate struct {
	Status    domain.AgentStatus
	Reason    string
	UpdatedBy string // acting admin id
}

// AgentRepository defines persistence operations for agents.
//
// Create must translate a unique-index violation into *domain.ConflictError:
// the service-level uniqueness pre-check is only a fast path, the index is
// the final arbiter under concurrent registrations.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) (*domain.Agent, error)
	FindByID(ctx context.Context, id string) (*domain.Agent, error)
	FindByEmail(ctx context.Context, email string) (*domain.Agent, error)
	// FindConflict returns an existing agent colliding with any of the three
	// unique fields, or domain.ErrAgentNotFound when all are free.
	FindConflict(ctx context.Context, email, phone, licenseNumber string) (*domain.Agent, error)
	// UpdateStatus applies upd only if the agent's current status still equals
	// expected (conditional write). Returns domain.ErrAgentNotFound when the
	// agent does not exist and domain.ErrInvalidTransition when it exists but
	// the status moved underneath us.
	UpdateStatus(ctx context.Context, id string, expected domain.AgentStatus, upd AgentStatusUpdate) (*domain.Agent, error)
	// UpdateProfile overwrites the self-editable profile fields only; it must
	// never touch status, credentials, or document references.
	UpdateProfile(ctx context.Context, id string, upd AgentProfileUpdate) (*domain.Agent, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AgentListFilter) ([]*domain.Agent, int64, error)
	CountByStatus(ctx context.Context) (map[domain.AgentStatus]int64, error)
}

// AgentProfileUpdate carries the fields an agent may edit on their own record.
// Nil pointers leave the stored value untouched.
type AgentProfileUpdate struct {
	FullName       *string
	Experience     *string
	Specialization *string
	Location       *string
	About          *string
}

// UserRepository defines persistence operations for regular user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
