package domain

import "time"

// Session is the transient credential state issued by the identity provider.
// It is observed, never owned, by this service.
type Session struct {
	UserID           string            `json:"user_id"`
	Email            string            `json:"email"`
	AccessToken      string            `json:"access_token"`
	RefreshToken     string            `json:"refresh_token"`
	ExpiresAt        time.Time         `json:"expires_at"`
	EmailConfirmedAt *time.Time        `json:"email_confirmed_at"`
	Metadata         map[string]string `json:"metadata"`
}

// MetadataUserType returns the requested role hint carried in signup
// metadata, if any
func (s *Session) MetadataUserType() (UserType, bool) {
	if s == nil || s.Metadata == nil {
		return "", false
	}
	t, ok := s.Metadata["user_type"]
	if !ok || !UserType(t).Valid() {
		return "", false
	}
	return UserType(t), true
}

// SessionEventKind identifies a session-change event emitted by the identity
// provider
type SessionEventKind string

const (
	SessionSignedIn    SessionEventKind = "SIGNED_IN"
	SessionSignedOut   SessionEventKind = "SIGNED_OUT"
	SessionUserUpdated SessionEventKind = "USER_UPDATED"
)

// SessionEvent pairs an event kind with the session it refers to. Session is
// nil for SIGNED_OUT.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *Session
}
