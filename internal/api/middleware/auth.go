package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxPrincipal   = "principal"
	CtxRole        = "role"
	CtxPrincipalID = "principal_id"
)

// PrincipalResolver re-resolves token claims to a fresh principal snapshot.
type PrincipalResolver interface {
	ResolveByID(ctx context.Context, id, role string) (*domain.Principal, error)
}

// Auth validates the bearer token and attaches the resolved principal to the
// request context. Expired and malformed tokens fail with distinct messages
// so clients can tell "log in again" from "broken token". Claims are not
// trusted beyond id and role: the principal is re-resolved from the store on
// every request because role and account status may have changed since the
// token was issued.
func Auth(jwtSecret string, resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required: no token provided")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, _ := claims["sub"].(string)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token structure")
			}
			role, _ := claims["role"].(string)

			principal, err := resolver.ResolveByID(c.Request().Context(), id, role)
			if err != nil {
				if errors.Is(err, domain.ErrPrincipalNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
				}
				return err
			}

			c.Set(CtxPrincipal, principal)
			c.Set(CtxRole, principal.Role)
			c.Set(CtxPrincipalID, principal.ID)

			return next(c)
		}
	}
}
