package ports

import (
	"context"

	"github.com/housify/agent-platform/internal/core/domain"
)

// RegisterAgentInput carries the applicant's submitted fields and documents.
// IDDocument and LicenseDocument are mandatory; ProfilePhoto is optional.
type RegisterAgentInput struct {
	FullName       string
	Email          string
	Password       string
	Phone          string
	LicenseNumber  string
	Experience     string
	Specialization string
	Location       string
	About          string

	ProfilePhoto    *DocumentUpload
	IDDocument      *DocumentUpload
	LicenseDocument *DocumentUpload
}

// RegisterUserInput carries a regular account registration.
type RegisterUserInput struct {
	Username    string
	Email       string
	Password    string
	Preferences domain.UserPreferences
}

// RegistrationService creates new principals. Agent registration never issues
// a token: the account cannot log in until an admin approves it.
type RegistrationService interface {
	RegisterAgent(ctx context.Context, input RegisterAgentInput) (*domain.Agent, error)
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	// ApplicationStatus reports where an application stands, by email.
	ApplicationStatus(ctx context.Context, email string) (domain.AgentStatus, string, error)
}
