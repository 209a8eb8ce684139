package coordinator

import "errors"

var (
	// ErrAccountProvisioning is returned when a session exists but no
	// profile row could be fetched or created. Fatal to the session.
	ErrAccountProvisioning = errors.New("account could not be provisioned")

	// ErrEmailNotConfirmed is returned when the profile exists but neither
	// the local row nor the identity provider report a confirmed email.
	// Fatal to the session.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrNotAuthenticated is returned by operations that require an active
	// session
	ErrNotAuthenticated = errors.New("not authenticated")
)
