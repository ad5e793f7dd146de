package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/core/domain"
)

const testSecret = "test-signing-secret"

type stubResolver struct {
	principals map[string]*domain.Principal
	lastRole   string
}

func (r *stubResolver) ResolveByID(_ context.Context, id, role string) (*domain.Principal, error) {
	r.lastRole = role
	if p, ok := r.principals[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(id, role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  id,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func runAuth(t *testing.T, resolver *stubResolver, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(testSecret, resolver)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func assertUnauthorized(t *testing.T, err error, wantMessage string) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", httpErr.Code)
	}
	if httpErr.Message != wantMessage {
		t.Errorf("message = %q, want %q", httpErr.Message, wantMessage)
	}
}

func TestAuthValidToken(t *testing.T) {
	resolver := &stubResolver{principals: map[string]*domain.Principal{
		"agent-1": {ID: "agent-1", Role: domain.RoleAgent, Agent: &domain.Agent{ID: "agent-1", Status: domain.StatusApproved}},
	}}
	token := signToken(t, testSecret, validClaims("agent-1", domain.RoleAgent))

	c, err := runAuth(t, resolver, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	principal, _ := c.Get(CtxPrincipal).(*domain.Principal)
	if principal == nil || principal.ID != "agent-1" {
		t.Error("expected principal attached to context")
	}
	if role, _ := c.Get(CtxRole).(string); role != domain.RoleAgent {
		t.Errorf("role in context = %q", role)
	}
	if id, _ := c.Get(CtxPrincipalID).(string); id != "agent-1" {
		t.Errorf("principal id in context = %q", id)
	}
	if resolver.lastRole != domain.RoleAgent {
		t.Errorf("claimed role passed to resolver = %q", resolver.lastRole)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	_, err := runAuth(t, &stubResolver{}, "")
	assertUnauthorized(t, err, "authentication required: no token provided")
}

func TestAuthMalformedHeader(t *testing.T) {
	for _, header := range []string{"Basic abc", "Bearer"} {
		_, err := runAuth(t, &stubResolver{}, header)
		assertUnauthorized(t, err, "invalid authorization header")
	}
}

func TestAuthExpiredTokenIsDistinct(t *testing.T) {
	claims := validClaims("agent-1", domain.RoleAgent)
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, claims)

	_, err := runAuth(t, &stubResolver{}, "Bearer "+token)
	assertUnauthorized(t, err, "token expired")
}

func TestAuthWrongSignature(t *testing.T) {
	token := signToken(t, "other-secret", validClaims("agent-1", domain.RoleAgent))
	_, err := runAuth(t, &stubResolver{}, "Bearer "+token)
	assertUnauthorized(t, err, "invalid token")
}

func TestAuthGarbageToken(t *testing.T) {
	_, err := runAuth(t, &stubResolver{}, "Bearer not.a.token")
	assertUnauthorized(t, err, "invalid token")
}

func TestAuthMissingSubject(t *testing.T) {
	claims := validClaims("", domain.RoleAgent)
	token := signToken(t, testSecret, claims)
	_, err := runAuth(t, &stubResolver{}, "Bearer "+token)
	assertUnauthorized(t, err, "invalid token structure")
}

func TestAuthDeletedAccount(t *testing.T) {
	// A syntactically valid token whose principal no longer exists: the
	// per-request re-resolution catches it.
	token := signToken(t, testSecret, validClaims("gone-1", domain.RoleAgent))
	_, err := runAuth(t, &stubResolver{principals: map[string]*domain.Principal{}}, "Bearer "+token)
	assertUnauthorized(t, err, "account no longer exists")
}

func TestAuthRoleComesFromResolverNotClaims(t *testing.T) {
	// The store says admin even though the (stale) token claims agent; the
	// fresh snapshot wins.
	resolver := &stubResolver{principals: map[string]*domain.Principal{
		"p-1": {ID: "p-1", Role: domain.RoleAdmin, Admin: &domain.Admin{ID: "p-1", IsActive: true}},
	}}
	token := signToken(t, testSecret, validClaims("p-1", domain.RoleAgent))

	c, err := runAuth(t, resolver, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if role, _ := c.Get(CtxRole).(string); role != domain.RoleAdmin {
		t.Errorf("context role = %q, want the resolved admin role", role)
	}
}
