package ports

import "context"

// LoginThrottle guards the credential store against brute-force attempts.
// Implementations fail open: an unavailable backend must never lock out logins.
type LoginThrottle interface {
	// Allow reports whether another attempt for this email may proceed.
	Allow(ctx context.Context, email string) (bool, error)
	// RecordFailure notes one failed attempt for this email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}
