package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

// ---- admin store ----

type memAdminRepo struct {
	admins map[string]*domain.Admin // keyed by id
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: make(map[string]*domain.Admin)}
}

func (r *memAdminRepo) add(a *domain.Admin) { r.admins[a.ID] = a }

func (r *memAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *memAdminRepo) FindByID(_ context.Context, id string) (*domain.Admin, error) {
	if a, ok := r.admins[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *memAdminRepo) RecordLogin(_ context.Context, id string) error {
	if _, ok := r.admins[id]; !ok {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// ---- agent store ----

type memAgentRepo struct {
	agents map[string]*domain.Agent
	seq    int
	// precheckOff makes FindConflict answer not-found, simulating a racer
	// that slips past the registration pre-check and hits the unique index.
	precheckOff bool
	// raceTo, when set, flips the agent to this status right before the
	// conditional write, simulating a concurrent admin winning the race.
	raceTo domain.AgentStatus
}

func newMemAgentRepo() *memAgentRepo {
	return &memAgentRepo{agents: make(map[string]*domain.Agent)}
}

func (r *memAgentRepo) add(a *domain.Agent) { r.agents[a.ID] = a }

func (r *memAgentRepo) Create(_ context.Context, agent *domain.Agent) (*domain.Agent, error) {
	for _, existing := range r.agents {
		switch {
		case existing.Email == agent.Email:
			return nil, &domain.ConflictError{Field: "email"}
		case existing.Phone == agent.Phone:
			return nil, &domain.ConflictError{Field: "phone number"}
		case existing.LicenseNumber == agent.LicenseNumber:
			return nil, &domain.ConflictError{Field: "license number"}
		}
	}
	r.seq++
	clone := *agent
	clone.ID = fmt.Sprintf("agent-%d", r.seq)
	r.agents[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memAgentRepo) FindByID(_ context.Context, id string) (*domain.Agent, error) {
	if a, ok := r.agents[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domain.ErrAgentNotFound
}

func (r *memAgentRepo) FindByEmail(_ context.Context, email string) (*domain.Agent, error) {
	for _, a := range r.agents {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAgentNotFound
}

func (r *memAgentRepo) FindConflict(_ context.Context, email, phone, license string) (*domain.Agent, error) {
	if r.precheckOff {
		return nil, domain.ErrAgentNotFound
	}
	for _, a := range r.agents {
		if a.Email == email || a.Phone == phone || a.LicenseNumber == license {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAgentNotFound
}

func (r *memAgentRepo) UpdateStatus(_ context.Context, id string, expected domain.AgentStatus, upd ports.AgentStatusUpdate) (*domain.Agent, error) {
	a, ok := r.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	if r.raceTo != "" {
		a.Status = r.raceTo
		r.raceTo = ""
	}
	if a.Status != expected {
		return nil, domain.ErrInvalidTransition
	}
	a.Status = upd.Status
	a.StatusReason = upd.Reason
	a.StatusUpdatedBy = upd.UpdatedBy
	clone := *a
	return &clone, nil
}

func (r *memAgentRepo) UpdateProfile(_ context.Context, id string, upd ports.AgentProfileUpdate) (*domain.Agent, error) {
	a, ok := r.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	if upd.FullName != nil {
		a.FullName = *upd.FullName
	}
	if upd.Experience != nil {
		a.Experience = *upd.Experience
	}
	if upd.Specialization != nil {
		a.Specialization = *upd.Specialization
	}
	if upd.Location != nil {
		a.Location = *upd.Location
	}
	if upd.About != nil {
		a.About = *upd.About
	}
	clone := *a
	return &clone, nil
}

func (r *memAgentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.agents[id]; !ok {
		return domain.ErrAgentNotFound
	}
	delete(r.agents, id)
	return nil
}

func (r *memAgentRepo) List(_ context.Context, filter ports.AgentListFilter) ([]*domain.Agent, int64, error) {
	var out []*domain.Agent
	for _, a := range r.agents {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *memAgentRepo) CountByStatus(_ context.Context) (map[domain.AgentStatus]int64, error) {
	counts := make(map[domain.AgentStatus]int64)
	for _, a := range r.agents {
		counts[a.Status]++
	}
	return counts, nil
}

// ---- user store ----

type memUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) add(u *domain.User) { r.users[u.ID] = u }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, &domain.ConflictError{Field: "email"}
		}
		if existing.Username == user.Username {
			return nil, &domain.ConflictError{Field: "username"}
		}
	}
	r.seq++
	clone := *user
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrPrincipalNotFound
}

// ---- document store ----

type memDocStore struct {
	mu      sync.Mutex
	seq     int
	saved   map[string]bool
	removed []string
	saveErr map[string]error // keyed by upload field
	rmErr   map[string]error // keyed by ref
}

func newMemDocStore() *memDocStore {
	return &memDocStore{
		saved:   make(map[string]bool),
		saveErr: make(map[string]error),
		rmErr:   make(map[string]error),
	}
}

func (s *memDocStore) Save(_ context.Context, upload ports.DocumentUpload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveErr[upload.Field]; err != nil {
		return "", err
	}
	s.seq++
	ref := fmt.Sprintf("%s-%d", upload.Field, s.seq)
	s.saved[ref] = true
	return ref, nil
}

func (s *memDocStore) Remove(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rmErr[ref]; err != nil {
		return err
	}
	delete(s.saved, ref)
	s.removed = append(s.removed, ref)
	return nil
}

func (s *memDocStore) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// ---- mailer ----

type chanMailer struct {
	decisions chan string
	welcomes  chan string
}

func newChanMailer() *chanMailer {
	return &chanMailer{
		decisions: make(chan string, 8),
		welcomes:  make(chan string, 8),
	}
}

func (m *chanMailer) SendDecision(_ context.Context, to, _, status, _ string) error {
	m.decisions <- to + ":" + status
	return nil
}

func (m *chanMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.welcomes <- to
	return nil
}

// ---- login throttle ----

type memThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func newMemThrottle(max int) *memThrottle {
	return &memThrottle{failures: make(map[string]int), max: max}
}

func (t *memThrottle) Allow(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[email] < t.max, nil
}

func (t *memThrottle) RecordFailure(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return nil
}

func (t *memThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	return nil
}
