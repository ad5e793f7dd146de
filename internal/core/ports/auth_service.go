package ports

import (
	"context"

	"github.com/housify/agent-platform/internal/core/domain"
)

// LoginResult is returned by a successful authentication.
type LoginResult struct {
	Token     string
	Principal *domain.Principal
}

// AuthService resolves credentials to a principal and issues session tokens.
type AuthService interface {
	// Login probes the admin, agent, and user stores in that order. Agents
	// with a non-approved status fail with *domain.NotReadyError; inactive
	// admins and every credential mismatch fail with the same
	// domain.ErrInvalidCredentials regardless of whether the email exists.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// AdminLogin behaves like Login but only accepts admin principals.
	AdminLogin(ctx context.Context, email, password string) (*LoginResult, error)
	// ResolveByID re-resolves a principal from token claims using the same
	// admin > agent > user precedence as Login.
	ResolveByID(ctx context.Context, id, role string) (*domain.Principal, error)
}

// TokenIssuer mints and verifies the signed session tokens carried on
// authenticated requests.
type TokenIssuer interface {
	Issue(principalID, role string) (string, error)
}
