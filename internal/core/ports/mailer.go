package ports

import "context"

// Mailer is the outbound notification collaborator. Implementations must be
// bounded by a timeout; callers treat failures as best-effort (logged, never
// propagated into the primary operation's result).
type Mailer interface {
	// SendDecision notifies an applicant that their application was decided.
	SendDecision(ctx context.Context, to, name, status, reason string) error
	// SendWelcome greets a newly registered user account.
	SendWelcome(ctx context.Context, to, username string) error
}
