package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tradehub/tradehub-api/internal/domain"
)

// HTTPProvider talks to a GoTrue-compatible identity service over REST and
// keeps the current session in memory, emitting session-change events as its
// own operations succeed.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	events  *Broadcaster

	mu      sync.Mutex
	session *domain.Session
}

// NewHTTPProvider creates a provider client for the given base URL
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		events:  NewBroadcaster(),
	}
}

type providerUser struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	EmailConfirmedAt *time.Time        `json:"email_confirmed_at"`
	UserMetadata     map[string]string `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         providerUser `json:"user"`
}

type signUpResponse struct {
	// Flat user shape when confirmation is pending, token shape otherwise
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`

	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	User         *providerUser `json:"user"`
}

type providerError struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *providerError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.Error
	}
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, query url.Values, body interface{}, bearer string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var pe providerError
		_ = json.NewDecoder(resp.Body).Decode(&pe)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			if msg := pe.text(); msg != "" {
				return fmt.Errorf("%s: %w", msg, ErrInvalidCredentials)
			}
			return ErrInvalidCredentials
		}
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, pe.text())
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func sessionFromToken(tr *tokenResponse) *domain.Session {
	return &domain.Session{
		UserID:           tr.User.ID,
		Email:            tr.User.Email,
		AccessToken:      tr.AccessToken,
		RefreshToken:     tr.RefreshToken,
		ExpiresAt:        time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		EmailConfirmedAt: tr.User.EmailConfirmedAt,
		Metadata:         tr.User.UserMetadata,
	}
}

// GetSession returns the cached session, refreshing the user record so a
// confirmation that happened at the provider is observed. A newly confirmed
// email triggers a USER_UPDATED event.
func (p *HTTPProvider) GetSession(ctx context.Context) (*domain.Session, error) {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()

	if current == nil {
		return nil, nil
	}

	var user providerUser
	if err := p.do(ctx, http.MethodGet, "/user", nil, nil, current.AccessToken, &user); err != nil {
		return nil, fmt.Errorf("failed to refresh session user: %w", err)
	}

	p.mu.Lock()
	if p.session == nil {
		// Signed out while the refresh was in flight
		p.mu.Unlock()
		return nil, nil
	}
	newlyConfirmed := p.session.EmailConfirmedAt == nil && user.EmailConfirmedAt != nil
	p.session.EmailConfirmedAt = user.EmailConfirmedAt
	if user.UserMetadata != nil {
		p.session.Metadata = user.UserMetadata
	}
	session := *p.session
	p.mu.Unlock()

	if newlyConfirmed {
		p.events.Emit(domain.SessionEvent{Kind: domain.SessionUserUpdated, Session: &session})
	}

	return &session, nil
}

// SignInWithPassword performs a password grant and emits SIGNED_IN on
// success
func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var tr tokenResponse
	if err := p.do(ctx, http.MethodPost, "/token", query, body, "", &tr); err != nil {
		return nil, err
	}

	session := sessionFromToken(&tr)

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	copied := *session
	p.events.Emit(domain.SessionEvent{Kind: domain.SessionSignedIn, Session: &copied})

	return session, nil
}

// SignUp registers an auth record. When the provider issues a session
// immediately (confirmation disabled) it is adopted and SIGNED_IN is
// emitted; otherwise the caller gets only the new user id.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*SignUpResult, error) {
	query := url.Values{}
	if opts.EmailRedirectTo != "" {
		query.Set("redirect_to", opts.EmailRedirectTo)
	}

	body := map[string]interface{}{"email": email, "password": password}
	if len(opts.Metadata) > 0 {
		body["data"] = opts.Metadata
	}

	var sr signUpResponse
	if err := p.do(ctx, http.MethodPost, "/signup", query, body, "", &sr); err != nil {
		return nil, err
	}

	if sr.AccessToken != "" && sr.User != nil {
		tr := tokenResponse{
			AccessToken:  sr.AccessToken,
			RefreshToken: sr.RefreshToken,
			ExpiresIn:    sr.ExpiresIn,
			User:         *sr.User,
		}
		session := sessionFromToken(&tr)

		p.mu.Lock()
		p.session = session
		p.mu.Unlock()

		copied := *session
		p.events.Emit(domain.SessionEvent{Kind: domain.SessionSignedIn, Session: &copied})

		return &SignUpResult{UserID: session.UserID, Email: session.Email, Session: session}, nil
	}

	return &SignUpResult{UserID: sr.ID, Email: sr.Email}, nil
}

// SignInWithOTP requests a magic link; no session state changes until the
// user completes the link
func (p *HTTPProvider) SignInWithOTP(ctx context.Context, email string, opts OTPOptions) error {
	query := url.Values{}
	if opts.EmailRedirectTo != "" {
		query.Set("redirect_to", opts.EmailRedirectTo)
	}

	body := map[string]interface{}{"email": email, "create_user": true}
	if len(opts.Metadata) > 0 {
		body["data"] = opts.Metadata
	}

	return p.do(ctx, http.MethodPost, "/otp", query, body, "", nil)
}

// SignOut revokes the session at the provider, clears the cached session and
// emits SIGNED_OUT. The local session is dropped even when revocation fails.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	session := p.session
	p.session = nil
	p.mu.Unlock()

	defer p.events.Emit(domain.SessionEvent{Kind: domain.SessionSignedOut})

	if session == nil {
		return nil
	}

	if err := p.do(ctx, http.MethodPost, "/logout", nil, nil, session.AccessToken, nil); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// OnSessionChange registers a session-change handler
func (p *HTTPProvider) OnSessionChange(handler func(domain.SessionEvent)) func() {
	return p.events.Subscribe(handler)
}

// AdoptSession installs an externally obtained session (e.g. restored from a
// persisted refresh token) and emits SIGNED_IN
func (p *HTTPProvider) AdoptSession(session *domain.Session) {
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	copied := *session
	p.events.Emit(domain.SessionEvent{Kind: domain.SessionSignedIn, Session: &copied})
}

var _ Provider = (*HTTPProvider)(nil)
