package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/identity"
	"github.com/tradehub/tradehub-api/internal/repository"
	"go.uber.org/zap"
)

// Coordinator reconciles the identity provider's session state with the
// local profile record and holds the resulting session-scoped state: current
// session, current profile, loading flag and last error.
//
// State is mutated only by the coordinator itself; everything else reads it
// through the accessors.
type Coordinator struct {
	provider      identity.Provider
	profiles      repository.ProfileRepository
	professionals repository.ProfessionalRepository
	roleChanges   repository.RoleChangeRepository
	roles         RoleCache
	notifier      Notifier
	logger        *zap.Logger
	siteURL       string

	mu           sync.Mutex
	session      *domain.Session
	profile      *domain.Profile
	loading      bool
	lastErr      error
	roleOverride *domain.UserType
	lastRole     domain.UserType
	// generation invalidates in-flight reconciliations: a SIGNED_OUT (or any
	// state clear) bumps it, and a reconciliation started under an older
	// generation discards its commit instead of resurrecting a dead session.
	generation uint64

	unsubscribe func()
}

// Config collects the coordinator's collaborators
type Config struct {
	Provider      identity.Provider
	Profiles      repository.ProfileRepository
	Professionals repository.ProfessionalRepository
	RoleChanges   repository.RoleChangeRepository
	Roles         RoleCache
	Notifier      Notifier
	Logger        *zap.Logger
	SiteURL       string
}

// New creates a coordinator. Call Init to restore any existing session and
// start observing session events; call Close on teardown.
func New(cfg Config) *Coordinator {
	return &Coordinator{
		provider:      cfg.Provider,
		profiles:      cfg.Profiles,
		professionals: cfg.Professionals,
		roleChanges:   cfg.RoleChanges,
		roles:         cfg.Roles,
		notifier:      cfg.Notifier,
		logger:        cfg.Logger,
		siteURL:       strings.TrimRight(cfg.SiteURL, "/"),
	}
}

// Init restores any existing session, reconciles it, and subscribes to the
// provider's session-change events for the coordinator's lifetime.
func (c *Coordinator) Init(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	c.unsubscribe = c.provider.OnSessionChange(c.handleEvent)

	session, err := c.provider.GetSession(ctx)
	if err != nil {
		c.logger.Error("failed to restore session", zap.Error(err))
		c.mu.Lock()
		c.lastErr = err
		c.loading = false
		c.mu.Unlock()
		return err
	}

	if session == nil {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return nil
	}

	err = c.reconcile(ctx, session)

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	return err
}

// Close stops observing session events. Coordinator state is left as-is.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Coordinator) handleEvent(event domain.SessionEvent) {
	ctx := context.Background()

	switch event.Kind {
	case domain.SessionSignedIn:
		if event.Session == nil {
			return
		}
		if err := c.reconcile(ctx, event.Session); err != nil {
			c.logger.Warn("reconciliation after sign-in failed",
				zap.String("user_id", event.Session.UserID),
				zap.Error(err),
			)
		}

	case domain.SessionSignedOut:
		c.clearState()

	case domain.SessionUserUpdated:
		c.handleUserUpdated(ctx, event.Session)
	}
}

// handleUserUpdated applies a confirmation repair when the provider reports
// a newly confirmed email for the cached profile
func (c *Coordinator) handleUserUpdated(ctx context.Context, session *domain.Session) {
	if session == nil || session.EmailConfirmedAt == nil {
		return
	}

	c.mu.Lock()
	profile := c.profile
	c.mu.Unlock()

	if profile == nil || profile.Confirmed || profile.ID != session.UserID {
		return
	}

	repaired, err := c.profiles.SetConfirmed(ctx, profile.ID)
	if err != nil {
		c.logger.Warn("confirmation repair failed", zap.String("user_id", profile.ID), zap.Error(err))
		return
	}

	c.mu.Lock()
	if c.profile != nil && c.profile.ID == repaired.ID {
		c.profile = repaired
	}
	c.mu.Unlock()
}

// clearState resets session, profile and error and invalidates in-flight
// reconciliations
func (c *Coordinator) clearState() {
	c.mu.Lock()
	c.generation++
	c.session = nil
	c.profile = nil
	c.lastErr = nil
	c.roleOverride = nil
	c.mu.Unlock()
}

// SignIn performs a password sign-in. The profile fetch/create steps run
// synchronously so the caller learns about unconfirmed-email failures before
// navigating anywhere.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) dto.Result {
	session, err := c.provider.SignInWithPassword(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		c.logger.Info("sign-in rejected", zap.String("email", email), zap.Error(err))
		return dto.Fail("Invalid email or password")
	}

	profile, err := c.ensureProfile(ctx, session)
	if err != nil {
		c.logger.Error("sign-in provisioning failed", zap.String("user_id", session.UserID), zap.Error(err))
		return dto.Fail("We could not set up your account. Please try again or contact support.")
	}

	if !profile.Confirmed {
		// The SIGNED_IN event's reconciliation handles the sign-out; this
		// path only reports the failure to the caller.
		return dto.Fail("Your email is not confirmed yet. Please check your inbox for the confirmation link.")
	}

	return dto.Ok("Signed in", dto.SignInData{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    session.ExpiresAt.Unix(),
		UserID:       session.UserID,
		UserType:     string(profile.UserType),
	})
}

// SignUp registers a new account with the identity provider and provisions
// the profile (and professional details) when the provider returns an active
// user. Notification dispatch is detached and never fails the sign-up.
func (c *Coordinator) SignUp(ctx context.Context, req *dto.SignUpRequest) dto.Result {
	if req.Password != req.ConfirmPassword {
		return dto.Fail("Passwords do not match")
	}

	userType := domain.UserType(req.UserType)
	if !userType.Valid() || userType == domain.UserTypeAdmin {
		return dto.Fail("Invalid account type")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := c.profiles.FindByIDOrEmail(ctx, "", email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		c.logger.Error("sign-up pre-check failed", zap.String("email", email), zap.Error(err))
		return dto.Fail("Something went wrong. Please try again.")
	}
	if existing != nil && existing.Confirmed {
		return dto.Fail(fmt.Sprintf("This email is already registered as a %s. Please log in instead.", existing.UserType))
	}

	redirect := fmt.Sprintf("%s/auth/callback?type=%s", c.siteURL, userType)
	result, err := c.provider.SignUp(ctx, email, req.Password, identity.SignUpOptions{
		EmailRedirectTo: redirect,
		Metadata:        map[string]string{"user_type": string(userType)},
	})
	if err != nil {
		c.logger.Warn("identity sign-up failed", zap.String("email", email), zap.Error(err))
		return dto.Fail("Registration failed. Please try again.")
	}

	if result.Session != nil {
		profile, err := c.createOrRepairProfile(ctx, result.UserID, email, userType, req)
		if err != nil {
			c.logger.Error("profile provisioning failed", zap.String("user_id", result.UserID), zap.Error(err))
			return dto.Fail("We could not set up your account. Please try again or contact support.")
		}

		if userType == domain.UserTypeProfessional {
			details := &domain.ProfessionalDetails{
				ID:                 profile.ID,
				CompanyName:        req.CompanyName,
				RegistrationNumber: req.RegistrationNumber,
				Trade:              req.Trade,
			}
			// The profile row is authoritative; details can be completed
			// later in the professional onboarding flow.
			if err := c.professionals.Insert(ctx, details); err != nil {
				c.logger.Warn("professional details creation failed",
					zap.String("user_id", profile.ID), zap.Error(err))
			}
		}
	}

	c.dispatchSignUpEmails(email, req.FirstName, redirect)

	if err := c.roles.SetRole(ctx, result.UserID, userType); err != nil {
		c.logger.Debug("role cache write failed", zap.Error(err))
	}
	c.mu.Lock()
	c.lastRole = userType
	c.mu.Unlock()

	return dto.Ok("Account created. Please check your email to confirm your address.", nil)
}

// dispatchSignUpEmails fires confirmation and welcome mail without joining
// the outcome into the sign-up result
func (c *Coordinator) dispatchSignUpEmails(email, firstName, redirect string) {
	go func() {
		ctx := context.Background()
		if err := c.notifier.SendConfirmation(ctx, email, redirect); err != nil {
			c.logger.Warn("confirmation email failed", zap.String("email", email), zap.Error(err))
		}
		if err := c.notifier.SendWelcome(ctx, email, firstName); err != nil {
			c.logger.Warn("welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}()
}

// SignOut clears the durable role cache, revokes the provider session and
// resets coordinator state
func (c *Coordinator) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session != nil {
		if err := c.roles.Clear(ctx, session.UserID); err != nil {
			c.logger.Debug("role cache clear failed", zap.Error(err))
		}
	}

	err := c.provider.SignOut(ctx)

	// The SIGNED_OUT event normally clears state; do it here as well in
	// case the subscription is already torn down.
	c.clearState()

	if err != nil {
		c.logger.Warn("provider sign-out failed", zap.Error(err))
		return err
	}
	return nil
}

// LoginWithOTP requests a passwordless login link. Profile state is not
// touched; reconciliation happens on the SIGNED_IN event once the user
// completes the link.
func (c *Coordinator) LoginWithOTP(ctx context.Context, email, userType string) dto.Result {
	t := domain.UserType(userType)
	if !t.Valid() || t == domain.UserTypeAdmin {
		return dto.Fail("Invalid account type")
	}

	err := c.provider.SignInWithOTP(ctx, strings.ToLower(strings.TrimSpace(email)), identity.OTPOptions{
		EmailRedirectTo: fmt.Sprintf("%s/auth/callback?type=%s", c.siteURL, t),
		Metadata:        map[string]string{"user_type": string(t)},
	})
	if err != nil {
		c.logger.Warn("otp request failed", zap.String("email", email), zap.Error(err))
		return dto.Fail("Could not send the login link. Please try again.")
	}

	return dto.Ok("Check your email for the login link.", nil)
}

// UpdateProfile applies the allow-listed fields to the current session's
// profile. The role cannot be edited here; it only changes through the
// role-change request flow.
func (c *Coordinator) UpdateProfile(ctx context.Context, updates *dto.UpdateProfileRequest) (*domain.Profile, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, ErrNotAuthenticated
	}

	updated, err := c.profiles.Update(ctx, session.UserID, &repository.ProfileUpdate{
		FirstName:        updates.FirstName,
		LastName:         updates.LastName,
		Phone:            updates.Phone,
		Postcode:         updates.Postcode,
		PreferredContact: updates.PreferredContact,
		Address:          updates.Address,
		AvatarURL:        updates.AvatarURL,
	})
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	c.mu.Lock()
	c.profile = updated
	c.lastRole = updated.UserType
	c.mu.Unlock()

	if err := c.roles.SetRole(ctx, updated.ID, updated.UserType); err != nil {
		c.logger.Debug("role cache write failed", zap.Error(err))
	}

	return updated, nil
}

// RequestRoleChange appends a pending role-change request. The profile's
// role itself is untouched; it changes only when an external approval
// process applies it.
func (c *Coordinator) RequestRoleChange(ctx context.Context, id string, newRole domain.UserType) dto.Result {
	if !newRole.Valid() || newRole == domain.UserTypeAdmin {
		return dto.Fail("Invalid role")
	}

	profile, err := c.profiles.FetchByID(ctx, id)
	if err != nil {
		c.logger.Warn("role change lookup failed", zap.String("user_id", id), zap.Error(err))
		return dto.Fail("Profile not found")
	}

	if profile.UserType == newRole {
		return dto.Fail(fmt.Sprintf("You are already registered as a %s", newRole))
	}

	req := &domain.RoleChangeRequest{
		UserID:        id,
		FromRole:      profile.UserType,
		RequestedRole: newRole,
		Status:        domain.RoleChangePending,
	}
	if err := c.roleChanges.Insert(ctx, req); err != nil {
		c.logger.Error("role change insert failed", zap.String("user_id", id), zap.Error(err))
		return dto.Fail("Could not submit the role change request. Please try again.")
	}

	return dto.Ok("Role change requested. You will be notified once it is reviewed.", req)
}

// SetUserType overrides the locally reported role without persisting
// anything
func (c *Coordinator) SetUserType(t domain.UserType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roleOverride = &t
}

// User returns the current session, or nil
func (c *Coordinator) User() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Profile returns the current profile, or nil
func (c *Coordinator) Profile() *domain.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// Loading reports whether initialization is still in flight
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last recorded error, or nil
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// IsAuthenticated reports whether a reconciled session is committed
func (c *Coordinator) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.profile != nil
}

// UserType reports the effective role: the local override if set, then the
// committed profile, then the last role cached before reconciliation
// completed
func (c *Coordinator) UserType() domain.UserType {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roleOverride != nil {
		return *c.roleOverride
	}
	if c.profile != nil {
		return c.profile.UserType
	}
	return c.lastRole
}
