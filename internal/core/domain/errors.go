package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrStorage            = errors.New("storage failure")
)

// ValidationError reports user-correctable input problems, one message per field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msg := e.Fields[0]
	for _, f := range e.Fields[1:] {
		msg += "; " + f
	}
	return msg
}

// ConflictError reports a uniqueness violation on a named field.
// Field is one of "email", "phone number", "license number", "username".
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an account with this %s already exists", e.Field)
}

// NotReadyError is returned when an agent authenticates with correct
// credentials but a non-approved status. Unlike ErrInvalidCredentials it
// deliberately reveals account existence so the applicant can see where
// their application stands.
type NotReadyError struct {
	Status AgentStatus
}

func (e *NotReadyError) Error() string {
	switch e.Status {
	case StatusPending:
		return "your account is awaiting approval"
	case StatusRejected:
		return "your application was rejected"
	case StatusSuspended:
		return "your account is suspended"
	default:
		return "your account is not ready"
	}
}

// TransitionError names the exact transition that was refused.
type TransitionError struct {
	From AgentStatus
	To   AgentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition agent status from %q to %q", e.From, e.To)
}

// Is lets errors.Is(err, ErrInvalidTransition) match a TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
