package acceptance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IdentityStub is an in-process stand-in for the external identity provider.
// It verifies passwords with bcrypt and mints HS256 access tokens with the
// same shared secret the application validates against.
type IdentityStub struct {
	Server *httptest.Server
	secret []byte

	mu          sync.Mutex
	autoConfirm bool
	users       map[string]*stubUser
	otpEmails   []string
}

type stubUser struct {
	ID           string
	Email        string
	PasswordHash []byte
	ConfirmedAt  *time.Time
	Metadata     map[string]string
}

// NewIdentityStub starts the stub server. With autoConfirm set, sign-ups get
// an immediately confirmed user and an active session, mirroring a provider
// with email confirmation disabled.
func NewIdentityStub(secret string, autoConfirm bool) *IdentityStub {
	s := &IdentityStub{
		secret:      []byte(secret),
		autoConfirm: autoConfirm,
		users:       map[string]*stubUser{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/signup", s.handleSignUp)
	mux.HandleFunc("/token", s.handleToken)
	mux.HandleFunc("/user", s.handleUser)
	mux.HandleFunc("/otp", s.handleOTP)
	mux.HandleFunc("/logout", s.handleLogout)

	s.Server = httptest.NewServer(mux)
	return s
}

// Close shuts the stub server down
func (s *IdentityStub) Close() {
	s.Server.Close()
}

// URL returns the stub's base URL
func (s *IdentityStub) URL() string {
	return s.Server.URL
}

// SetAutoConfirm toggles immediate confirmation for subsequent sign-ups
func (s *IdentityStub) SetAutoConfirm(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoConfirm = v
}

// Confirm marks a user's email as confirmed, as if the confirmation link had
// been followed
func (s *IdentityStub) Confirm(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[strings.ToLower(email)]; ok {
		now := time.Now().UTC()
		u.ConfirmedAt = &now
	}
}

// OTPEmails returns the emails magic links were requested for
func (s *IdentityStub) OTPEmails() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.otpEmails...)
}

// Reset drops all registered users
func (s *IdentityStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[string]*stubUser{}
	s.otpEmails = nil
}

func (s *IdentityStub) mintToken(u *stubUser) string {
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString(s.secret)
	return signed
}

func (s *IdentityStub) userJSON(u *stubUser) map[string]interface{} {
	return map[string]interface{}{
		"id":                 u.ID,
		"email":              u.Email,
		"email_confirmed_at": u.ConfirmedAt,
		"user_metadata":      u.Metadata,
	}
}

func (s *IdentityStub) tokenJSON(u *stubUser) map[string]interface{} {
	return map[string]interface{}{
		"access_token":  s.mintToken(u),
		"refresh_token": uuid.New().String(),
		"expires_in":    3600,
		"user":          s.userJSON(u),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *IdentityStub) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string            `json:"email"`
		Password string            `json:"password"`
		Data     map[string]string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid request"})
		return
	}

	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "User already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "hashing failed"})
		return
	}

	u := &stubUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Metadata:     req.Data,
	}
	if s.autoConfirm {
		now := time.Now().UTC()
		u.ConfirmedAt = &now
	}
	s.users[email] = u

	if u.ConfirmedAt != nil {
		writeJSON(w, http.StatusOK, s.tokenJSON(u))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": u.ID, "email": u.Email})
}

func (s *IdentityStub) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "unsupported grant type"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(req.Email)]
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
		return
	}

	writeJSON(w, http.StatusOK, s.tokenJSON(u))
}

func (s *IdentityStub) handleUser(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	raw := strings.TrimPrefix(auth, "Bearer ")
	if raw == auth || raw == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "missing token"})
		return
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return s.secret, nil })
	if err != nil || !token.Valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}

	claims := token.Claims.(jwt.MapClaims)
	email, _ := claims["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "user not found"})
		return
	}

	writeJSON(w, http.StatusOK, s.userJSON(u))
}

func (s *IdentityStub) handleOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid request"})
		return
	}

	s.mu.Lock()
	s.otpEmails = append(s.otpEmails, strings.ToLower(req.Email))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *IdentityStub) handleLogout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
