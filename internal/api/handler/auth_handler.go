package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/api/metrics"
	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

// AuthHandler serves login, token verification, and user registration.
type AuthHandler struct {
	authService  ports.AuthService
	registration ports.RegistrationService
}

func NewAuthHandler(authService ports.AuthService, registration ports.RegistrationService) *AuthHandler {
	return &AuthHandler{authService: authService, registration: registration}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success   bool              `json:"success"`
	Token     string            `json:"token"`
	Principal *domain.Principal `json:"principal"`
}

type registerUserRequest struct {
	Username    string                 `json:"username" validate:"required"`
	Email       string                 `json:"email" validate:"required,email"`
	Password    string                 `json:"password" validate:"required"`
	Preferences domain.UserPreferences `json:"preferences"`
}

// Login authenticates any principal (admin, agent, or user) and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown", "failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(result.Principal.Role, "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Success:   true,
		Token:     result.Token,
		Principal: result.Principal,
	})
}

// AdminLogin authenticates against the admin store only.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Admin credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]any
// @Router       /admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(domain.RoleAdmin, "failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(domain.RoleAdmin, "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Success:   true,
		Token:     result.Token,
		Principal: result.Principal,
	})
}

// Verify returns the fresh principal snapshot behind the presented token.
//
// @Summary      Verify token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"principal": principal,
	})
}

// RegisterUser creates a regular marketplace account.
//
// @Summary      Register a user account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "Account details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.registration.RegisterUser(c.Request().Context(), ports.RegisterUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Preferences: req.Preferences,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"user":    user,
	})
}
