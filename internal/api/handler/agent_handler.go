package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/housify/agent-platform/internal/api/metrics"
	"github.com/housify/agent-platform/internal/core/ports"
)

// AgentHandler serves agent registration, application status, public
// profiles, and self-service profile updates.
type AgentHandler struct {
	registration ports.RegistrationService
	approval     ports.ApprovalService
}

func NewAgentHandler(registration ports.RegistrationService, approval ports.ApprovalService) *AgentHandler {
	return &AgentHandler{registration: registration, approval: approval}
}

// Register accepts the multipart application form: text fields plus
// idDocument and licenseDocument (required) and profilePhoto (optional).
// The created agent is pending; no session token is returned.
//
// @Summary      Submit an agent application
// @Tags         agents
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /agents/register [post]
func (h *AgentHandler) Register(c echo.Context) error {
	input := ports.RegisterAgentInput{
		FullName:       c.FormValue("fullName"),
		Email:          c.FormValue("email"),
		Password:       c.FormValue("password"),
		Phone:          c.FormValue("phone"),
		LicenseNumber:  c.FormValue("licenseNumber"),
		Experience:     c.FormValue("experience"),
		Specialization: c.FormValue("specialization"),
		Location:       c.FormValue("location"),
		About:          c.FormValue("about"),
	}

	var open []multipart.File
	defer func() {
		for _, f := range open {
			_ = f.Close()
		}
	}()

	for _, field := range []struct {
		name string
		dst  **ports.DocumentUpload
	}{
		{"profilePhoto", &input.ProfilePhoto},
		{"idDocument", &input.IDDocument},
		{"licenseDocument", &input.LicenseDocument},
	} {
		fh, err := c.FormFile(field.name)
		if err != nil {
			continue // absence of required files is the service's call
		}
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file "+field.name)
		}
		open = append(open, f)
		*field.dst = &ports.DocumentUpload{
			Field:       field.name,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		}
	}

	agent, err := h.registration.RegisterAgent(c.Request().Context(), input)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Agent application submitted successfully",
		"agent":   agent,
	})
}

// ApplicationStatus reports where an application stands, by email.
//
// @Summary      Check application status
// @Tags         agents
// @Produce      json
// @Param        email  query     string  true  "Applicant email"
// @Success      200    {object}  map[string]any
// @Failure      404    {object}  map[string]any
// @Router       /agents/application-status [get]
func (h *AgentHandler) ApplicationStatus(c echo.Context) error {
	status, message, err := h.registration.ApplicationStatus(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"status":  status,
		"message": message,
	})
}

// Get returns an agent's public profile. The password hash never serializes.
//
// @Summary      Get agent profile
// @Tags         agents
// @Produce      json
// @Param        id   path      string  true  "Agent id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /agents/{id} [get]
func (h *AgentHandler) Get(c echo.Context) error {
	agent, err := h.approval.GetAgent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"agent":   agent,
	})
}

type updateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Experience     *string `json:"experience"`
	Specialization *string `json:"specialization"`
	Location       *string `json:"location"`
	About          *string `json:"about"`
}

// UpdateProfile applies a self-or-admin edit of the profile fields. Status,
// credentials, and document references are not editable here.
//
// @Summary      Update agent profile
// @Tags         agents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Agent id"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /agents/{id} [put]
func (h *AgentHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	agent, err := h.approval.UpdateProfile(c.Request().Context(), c.Param("id"), ports.AgentProfileUpdate{
		FullName:       req.FullName,
		Experience:     req.Experience,
		Specialization: req.Specialization,
		Location:       req.Location,
		About:          req.About,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"agent":   agent,
	})
}
