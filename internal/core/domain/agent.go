package domain

import "time"

// AgentStatus represents the lifecycle state of an agent application.
type AgentStatus string

const (
	StatusPending   AgentStatus = "pending"
	StatusApproved  AgentStatus = "approved"
	StatusRejected  AgentStatus = "rejected"
	StatusSuspended AgentStatus = "suspended"
)

// validTransitions defines the allowed state machine transitions.
// Registration is the only writer of the initial pending state; everything
// below is admin-driven. rejected → approved re-opens an application after
// a second review; there is no terminal state.
var validTransitions = map[AgentStatus][]AgentStatus{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusSuspended},
	StatusSuspended: {StatusApproved},
	StatusRejected:  {StatusApproved},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s AgentStatus) CanTransitionTo(next AgentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the four known statuses.
func (s AgentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// Message returns the applicant-facing description of a status.
func (s AgentStatus) Message() string {
	switch s {
	case StatusPending:
		return "Your application is under review. We will notify you once it has been processed."
	case StatusApproved:
		return "Your application has been approved! You can now sign in to your account."
	case StatusRejected:
		return "Your application has been rejected. Please contact support for more information."
	case StatusSuspended:
		return "Your account has been suspended. Please contact support for more information."
	default:
		return "Unknown application status"
	}
}

// Agent is a marketplace agent: a principal whose dashboard access is gated
// by the admin approval workflow.
type Agent struct {
	ID              string      `json:"id"`
	FullName        string      `json:"full_name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	LicenseNumber   string      `json:"license_number"`
	PasswordHash    string      `json:"-"`
	Experience      string      `json:"experience,omitempty"`
	Specialization  string      `json:"specialization,omitempty"`
	Location        string      `json:"location,omitempty"`
	About           string      `json:"about,omitempty"`
	ProfilePhoto    string      `json:"profile_photo,omitempty"`
	IDDocument      string      `json:"id_document"`
	LicenseDocument string      `json:"license_document"`
	Status          AgentStatus `json:"status"`
	StatusReason    string      `json:"status_reason,omitempty"`
	StatusUpdatedAt time.Time   `json:"status_updated_at,omitzero"`
	StatusUpdatedBy string      `json:"status_updated_by,omitempty"`
	Rating          float64     `json:"rating"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// DocumentRefs returns every object-storage reference attached to the agent.
// Used when a delete must release the stored files.
func (a *Agent) DocumentRefs() []string {
	refs := make([]string, 0, 3)
	for _, ref := range []string{a.ProfilePhoto, a.IDDocument, a.LicenseDocument} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
