package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/api/middleware"
	"github.com/housify/agent-platform/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fast-fails before any service call: a nil principal means a route was wired
// without the middleware, which is a configuration mistake, not a user error.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	principal, _ := c.Get(middleware.CtxPrincipal).(*domain.Principal)
	if principal == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return principal, nil
}
