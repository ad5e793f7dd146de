package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

const defaultMinPasswordLen = 6

// RegistrationService validates applications, stores their documents, and
// creates pending agent records. User (buyer) accounts are created here too.
type RegistrationService struct {
	agents         ports.AgentRepository
	users          ports.UserRepository
	docs           ports.DocumentStore
	mailer         ports.Mailer
	minPasswordLen int
	log            zerolog.Logger
}

func NewRegistrationService(
	agents ports.AgentRepository,
	users ports.UserRepository,
	docs ports.DocumentStore,
	mailer ports.Mailer,
	minPasswordLen int,
	log zerolog.Logger,
) *RegistrationService {
	if minPasswordLen <= 0 {
		minPasswordLen = defaultMinPasswordLen
	}
	return &RegistrationService{
		agents:         agents,
		users:          users,
		docs:           docs,
		mailer:         mailer,
		minPasswordLen: minPasswordLen,
		log:            log,
	}
}

// RegisterAgent creates a pending agent. No token is issued: the account
// cannot log in until an admin approves the application.
func (s *RegistrationService) RegisterAgent(ctx context.Context, input ports.RegisterAgentInput) (*domain.Agent, error) {
	if err := s.validateAgentInput(input); err != nil {
		return nil, err
	}

	// Fast-path uniqueness check. The unique indexes on the store remain the
	// final arbiter; a concurrent registration slipping past this check is
	// caught as a ConflictError on Create below.
	if existing, err := s.agents.FindConflict(ctx, input.Email, input.Phone, input.LicenseNumber); err == nil {
		return nil, &domain.ConflictError{Field: conflictField(existing, input)}
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, err
	}

	refs, err := s.storeDocuments(ctx, input)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.releaseDocuments(refs)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	agent := &domain.Agent{
		FullName:        input.FullName,
		Email:           input.Email,
		Phone:           input.Phone,
		LicenseNumber:   input.LicenseNumber,
		PasswordHash:    string(hash),
		Experience:      input.Experience,
		Specialization:  input.Specialization,
		Location:        input.Location,
		About:           input.About,
		ProfilePhoto:    refs.profilePhoto,
		IDDocument:      refs.idDocument,
		LicenseDocument: refs.licenseDocument,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.agents.Create(ctx, agent)
	if err != nil {
		// The files were written before the record; don't orphan them.
		s.releaseDocuments(refs)
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create agent: %w", err)
	}

	s.log.Info().
		Str("agent_id", created.ID).
		Str("email", created.Email).
		Msg("agent application submitted")

	return created, nil
}

// RegisterUser creates a regular marketplace account and sends a best-effort
// welcome mail.
func (s *RegistrationService) RegisterUser(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	var missing []string
	if input.Username == "" {
		missing = append(missing, "username is required")
	}
	if input.Email == "" {
		missing = append(missing, "email is required")
	}
	if len(input.Password) < s.minPasswordLen {
		missing = append(missing, fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, &domain.ConflictError{Field: "email"}
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Preferences:  input.Preferences,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	s.sendWelcome(created)

	return created, nil
}

// ApplicationStatus reports where an application stands, by email.
func (s *RegistrationService) ApplicationStatus(ctx context.Context, email string) (domain.AgentStatus, string, error) {
	if email == "" {
		return "", "", &domain.ValidationError{Fields: []string{"email is required"}}
	}
	agent, err := s.agents.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	return agent.Status, agent.Status.Message(), nil
}

func (s *RegistrationService) validateAgentInput(input ports.RegisterAgentInput) error {
	var fields []string
	if input.FullName == "" {
		fields = append(fields, "full name is required")
	}
	if input.Email == "" {
		fields = append(fields, "email is required")
	}
	if input.Phone == "" {
		fields = append(fields, "phone is required")
	}
	if input.LicenseNumber == "" {
		fields = append(fields, "license number is required")
	}
	if len(input.Password) < s.minPasswordLen {
		fields = append(fields, fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	if input.IDDocument == nil {
		fields = append(fields, "id document is required")
	}
	if input.LicenseDocument == nil {
		fields = append(fields, "license document is required")
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

type documentRefs struct {
	profilePhoto    string
	idDocument      string
	licenseDocument string
}

func (r documentRefs) all() []string {
	refs := make([]string, 0, 3)
	for _, ref := range []string{r.profilePhoto, r.idDocument, r.licenseDocument} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// storeDocuments writes the uploads to external storage before the agent
// record exists. Any failure rolls back the files already written.
func (s *RegistrationService) storeDocuments(ctx context.Context, input ports.RegisterAgentInput) (documentRefs, error) {
	var refs documentRefs

	save := func(upload *ports.DocumentUpload, dst *string) error {
		if upload == nil {
			return nil
		}
		ref, err := s.docs.Save(ctx, *upload)
		if err != nil {
			return err
		}
		*dst = ref
		return nil
	}

	for _, step := range []struct {
		upload *ports.DocumentUpload
		dst    *string
	}{
		{input.IDDocument, &refs.idDocument},
		{input.LicenseDocument, &refs.licenseDocument},
		{input.ProfilePhoto, &refs.profilePhoto},
	} {
		if err := save(step.upload, step.dst); err != nil {
			s.releaseDocuments(refs)
			return documentRefs{}, fmt.Errorf("%w: store document: %v", domain.ErrStorage, err)
		}
	}

	return refs, nil
}

// releaseDocuments deletes files from an abandoned attempt. Best-effort:
// failures are logged, never propagated.
func (s *RegistrationService) releaseDocuments(refs documentRefs) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, ref := range refs.all() {
		if err := s.docs.Remove(ctx, ref); err != nil {
			s.log.Warn().Err(err).Str("ref", ref).Msg("failed to clean up uploaded document")
		}
	}
}

func (s *RegistrationService) sendWelcome(user *domain.User) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send welcome mail")
		}
	}()
}

// conflictField names the first colliding unique field, with the precedence
// email, then phone, then license number.
func conflictField(existing *domain.Agent, input ports.RegisterAgentInput) string {
	switch {
	case existing.Email == input.Email:
		return "email"
	case existing.Phone == input.Phone:
		return "phone number"
	default:
		return "license number"
	}
}
