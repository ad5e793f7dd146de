package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

// dummyHash is compared against when no principal matches the email, so a
// probe for an unregistered address costs the same as a wrong password.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService resolves credentials across the admin, agent, and user stores
// and issues session tokens. The probe order admin > agent > user is a
// documented precedence rule: if an id or email exists in more than one
// collection, admin wins.
type AuthService struct {
	admins   ports.AdminRepository
	agents   ports.AgentRepository
	users    ports.UserRepository
	throttle ports.LoginThrottle
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

// NewAuthService builds the resolver. The signing secret is mandatory; the
// service refuses to start with an empty one rather than fall back to a
// guessable constant. throttle may be nil (no brute-force guard).
func NewAuthService(
	admins ports.AdminRepository,
	agents ports.AgentRepository,
	users ports.UserRepository,
	throttle ports.LoginThrottle,
	secret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if secret == "" {
		panic("auth: signing secret not configured")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		admins:   admins,
		agents:   agents,
		users:    users,
		throttle: throttle,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if ok, err := s.allowAttempt(ctx, email); err == nil && !ok {
		return nil, domain.ErrTooManyAttempts
	}

	// 1. Admin store.
	if admin, err := s.admins.FindByEmail(ctx, email); err == nil {
		return s.loginAdmin(ctx, admin, password)
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	// 2. Agent store.
	if agent, err := s.agents.FindByEmail(ctx, email); err == nil {
		return s.loginAgent(ctx, agent, password)
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, err
	}

	// 3. User store.
	if user, err := s.users.FindByEmail(ctx, email); err == nil {
		return s.loginUser(ctx, user, password)
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	// Unknown email: burn a compare so timing matches the wrong-password path.
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	s.recordFailure(ctx, email)
	return nil, domain.ErrInvalidCredentials
}

// AdminLogin authenticates against the admin store only.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if ok, err := s.allowAttempt(ctx, email); err == nil && !ok {
		return nil, domain.ErrTooManyAttempts
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.loginAdmin(ctx, admin, password)
}

func (s *AuthService) loginAdmin(ctx context.Context, admin *domain.Admin, password string) (*ports.LoginResult, error) {
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, admin.Email)
		return nil, domain.ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if err := s.admins.RecordLogin(ctx, admin.ID); err != nil {
		s.log.Warn().Err(err).Str("admin_id", admin.ID).Msg("failed to record last login")
	}
	s.resetThrottle(ctx, admin.Email)

	return s.result(admin.ID, domain.RoleAdmin, &domain.Principal{
		ID: admin.ID, Role: domain.RoleAdmin, Admin: admin,
	})
}

func (s *AuthService) loginAgent(ctx context.Context, agent *domain.Agent, password string) (*ports.LoginResult, error) {
	if bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, agent.Email)
		return nil, domain.ErrInvalidCredentials
	}
	// Correct credentials but a gated account: this path reveals account
	// existence so the applicant can see where their application stands.
	if agent.Status != domain.StatusApproved {
		return nil, &domain.NotReadyError{Status: agent.Status}
	}
	s.resetThrottle(ctx, agent.Email)

	return s.result(agent.ID, domain.RoleAgent, &domain.Principal{
		ID: agent.ID, Role: domain.RoleAgent, Agent: agent,
	})
}

func (s *AuthService) loginUser(ctx context.Context, user *domain.User, password string) (*ports.LoginResult, error) {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, user.Email)
		return nil, domain.ErrInvalidCredentials
	}
	s.resetThrottle(ctx, user.Email)

	return s.result(user.ID, domain.RoleUser, &domain.Principal{
		ID: user.ID, Role: domain.RoleUser, User: user,
	})
}

// ResolveByID returns a fresh, authoritative principal snapshot for token
// claims. The claimed role is only a hint: the probe order decides, and a
// mismatch is logged because it means the account changed collections (or
// collided) since the token was issued.
func (s *AuthService) ResolveByID(ctx context.Context, id, role string) (*domain.Principal, error) {
	if admin, err := s.admins.FindByID(ctx, id); err == nil {
		s.warnRoleDrift(id, role, domain.RoleAdmin)
		return &domain.Principal{ID: admin.ID, Role: domain.RoleAdmin, Admin: admin}, nil
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	if agent, err := s.agents.FindByID(ctx, id); err == nil {
		s.warnRoleDrift(id, role, domain.RoleAgent)
		return &domain.Principal{ID: agent.ID, Role: domain.RoleAgent, Agent: agent}, nil
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, err
	}

	if user, err := s.users.FindByID(ctx, id); err == nil {
		s.warnRoleDrift(id, role, domain.RoleUser)
		return &domain.Principal{ID: user.ID, Role: domain.RoleUser, User: user}, nil
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	return nil, domain.ErrPrincipalNotFound
}

// Issue mints a signed session token carrying the principal id and role.
func (s *AuthService) Issue(principalID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  principalID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

func (s *AuthService) result(id, role string, principal *domain.Principal) (*ports.LoginResult, error) {
	token, err := s.Issue(id, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("principal_id", id).Str("role", role).Msg("login successful")
	return &ports.LoginResult{Token: token, Principal: principal}, nil
}

func (s *AuthService) warnRoleDrift(id, claimed, resolved string) {
	if claimed != "" && claimed != resolved {
		s.log.Warn().
			Str("principal_id", id).
			Str("claimed_role", claimed).
			Str("resolved_role", resolved).
			Msg("token role differs from resolved principal")
	}
}

func (s *AuthService) allowAttempt(ctx context.Context, email string) (bool, error) {
	if s.throttle == nil {
		return true, nil
	}
	ok, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// Fail open: an unavailable throttle backend never locks out logins.
		s.log.Warn().Err(err).Msg("login throttle check failed")
		return true, nil
	}
	return ok, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}
}
