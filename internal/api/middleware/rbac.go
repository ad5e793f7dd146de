package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/core/domain"
)

// RequireAdmin allows only active admins through. An admin whose account was
// deactivated after token issuance is caught here because the Auth middleware
// re-resolved a fresh snapshot.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, _ := c.Get(CtxPrincipal).(*domain.Principal)
		if principal == nil || principal.Role != domain.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		if principal.Admin == nil || !principal.Admin.IsActive {
			return echo.NewHTTPError(http.StatusForbidden, "admin account is not active")
		}
		return next(c)
	}
}

// RequireAgentOrAdmin allows agents and admins through.
func RequireAgentOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(CtxRole).(string)
		if role != domain.RoleAgent && role != domain.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "agent privileges required")
		}
		return next(c)
	}
}

// RequireSelfOrAdmin allows admins, or the principal whose id matches the
// named path parameter (resource owner).
func RequireSelfOrAdmin(idParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == domain.RoleAdmin {
				return next(c)
			}
			id, _ := c.Get(CtxPrincipalID).(string)
			if id == "" || id != c.Param(idParam) {
				return echo.NewHTTPError(http.StatusForbidden, "you can only modify your own account")
			}
			return next(c)
		}
	}
}
