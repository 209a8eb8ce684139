package identity

import (
	"context"
	"errors"

	"github.com/tradehub/tradehub-api/internal/domain"
)

// ErrInvalidCredentials is returned when the provider rejects a password
// grant
var ErrInvalidCredentials = errors.New("invalid login credentials")

// SignUpOptions carries the redirect target embedded in the confirmation
// email and the metadata attached to the auth record
type SignUpOptions struct {
	EmailRedirectTo string
	Metadata        map[string]string
}

// OTPOptions carries the callback target and metadata for a magic-link
// request
type OTPOptions struct {
	EmailRedirectTo string
	Metadata        map[string]string
}

// SignUpResult is the provider's answer to a sign-up call. Session is nil
// when the provider requires a confirmation round-trip before issuing one.
type SignUpResult struct {
	UserID  string
	Email   string
	Session *domain.Session
}

// Provider is the identity/session collaborator. Implementations own
// credential verification and session issuance; this service only observes.
type Provider interface {
	// GetSession returns the current session, or (nil, nil) when
	// unauthenticated.
	GetSession(ctx context.Context) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*SignUpResult, error)
	SignInWithOTP(ctx context.Context, email string, opts OTPOptions) error
	SignOut(ctx context.Context) error
	// OnSessionChange registers a handler for session-change events and
	// returns its unsubscribe function.
	OnSessionChange(handler func(domain.SessionEvent)) (unsubscribe func())
}
