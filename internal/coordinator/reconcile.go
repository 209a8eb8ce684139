package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/repository"
	"go.uber.org/zap"
)

// reconcile brings the local profile in line with a provider session:
// fetch-or-create (with id repair), confirmation repair, confirmation
// gating, then state commit. Runs on initialization and on every SIGNED_IN
// event.
func (c *Coordinator) reconcile(ctx context.Context, session *domain.Session) error {
	gen := c.currentGeneration()

	profile, err := c.ensureProfile(ctx, session)
	if err != nil {
		c.logger.Error("account provisioning failed",
			zap.String("user_id", session.UserID),
			zap.String("email", session.Email),
			zap.Error(err),
		)
		c.failSession(ctx, fmt.Errorf("%w: %v", ErrAccountProvisioning, err))
		return ErrAccountProvisioning
	}

	if !profile.Confirmed && session.EmailConfirmedAt != nil {
		repaired, err := c.profiles.SetConfirmed(ctx, profile.ID)
		if err != nil {
			// Non-fatal: carry on with the stale row and record the error
			c.logger.Warn("confirmation repair failed", zap.String("user_id", profile.ID), zap.Error(err))
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
		} else {
			profile = repaired
		}
	}

	if !profile.Confirmed {
		c.logger.Info("session gated on unconfirmed email", zap.String("user_id", profile.ID))
		c.failSession(ctx, ErrEmailNotConfirmed)
		return ErrEmailNotConfirmed
	}

	if !c.commit(gen, session, profile) {
		c.logger.Debug("discarded stale reconciliation", zap.String("user_id", profile.ID))
		return nil
	}

	if err := c.roles.SetRole(ctx, profile.ID, profile.UserType); err != nil {
		c.logger.Debug("role cache write failed", zap.Error(err))
	}
	c.mu.Lock()
	c.lastRole = profile.UserType
	c.mu.Unlock()

	return nil
}

// ensureProfile is the fetch-or-create half of reconciliation: fetch by id,
// fall back to create-or-repair keyed on id or email
func (c *Coordinator) ensureProfile(ctx context.Context, session *domain.Session) (*domain.Profile, error) {
	profile, err := c.profiles.FetchByID(ctx, session.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	userType := domain.UserTypeHomeowner
	if hinted, ok := session.MetadataUserType(); ok {
		userType = hinted
	}

	return c.createOrRepairProfile(ctx, session.UserID, session.Email, userType, nil)
}

// createOrRepairProfile inserts a profile row for the given identity, unless
// a row already exists under this id or email. A row pre-created under a
// temporary key with the same email gets its id repaired in place rather
// than a duplicate being inserted.
func (c *Coordinator) createOrRepairProfile(ctx context.Context, userID, email string, userType domain.UserType, extra *dto.SignUpRequest) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := c.profiles.FindByIDOrEmail(ctx, userID, email)
	if err == nil {
		if existing.ID != userID {
			repaired, err := c.profiles.UpdateID(ctx, existing.ID, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to repair profile id: %w", err)
			}
			c.logger.Info("repaired profile id",
				zap.String("email", email),
				zap.String("old_id", existing.ID),
				zap.String("new_id", userID),
			)
			return repaired, nil
		}
		if extra != nil {
			return c.backfillContactFields(ctx, existing, extra)
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        userID,
		Email:     email,
		UserType:  userType,
		Confirmed: false,
	}
	if extra != nil {
		profile.FirstName = extra.FirstName
		profile.LastName = extra.LastName
		profile.Phone = extra.Phone
		profile.Postcode = extra.Postcode
	}

	if err := c.profiles.Insert(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateProfile) || errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a concurrent creation race; the winner's row is ours
			winner, findErr := c.profiles.FindByIDOrEmail(ctx, userID, email)
			if findErr != nil {
				return nil, fmt.Errorf("failed to resolve creation race: %w", findErr)
			}
			if winner.ID != userID {
				repaired, repErr := c.profiles.UpdateID(ctx, winner.ID, userID)
				if repErr != nil {
					return nil, fmt.Errorf("failed to repair profile id: %w", repErr)
				}
				return repaired, nil
			}
			return winner, nil
		}
		return nil, err
	}

	return profile, nil
}

// backfillContactFields fills in sign-up contact details on a row that an
// event-driven provisioning pass created first, before the sign-up flow got
// to write them. Fields the row already has are left alone.
func (c *Coordinator) backfillContactFields(ctx context.Context, existing *domain.Profile, extra *dto.SignUpRequest) (*domain.Profile, error) {
	upd := &repository.ProfileUpdate{}
	changed := false
	if existing.FirstName == "" && extra.FirstName != "" {
		upd.FirstName = &extra.FirstName
		changed = true
	}
	if existing.LastName == "" && extra.LastName != "" {
		upd.LastName = &extra.LastName
		changed = true
	}
	if existing.Phone == "" && extra.Phone != "" {
		upd.Phone = &extra.Phone
		changed = true
	}
	if existing.Postcode == "" && extra.Postcode != "" {
		upd.Postcode = &extra.Postcode
		changed = true
	}
	if !changed {
		return existing, nil
	}

	updated, err := c.profiles.Update(ctx, existing.ID, upd)
	if err != nil {
		c.logger.Warn("contact detail backfill failed", zap.String("user_id", existing.ID), zap.Error(err))
		return existing, nil
	}
	return updated, nil
}

// failSession signs the provider session out and records the fatal error.
// The SIGNED_OUT event clears session and profile state.
func (c *Coordinator) failSession(ctx context.Context, cause error) {
	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Warn("forced sign-out failed", zap.Error(err))
	}
	c.clearState()

	c.mu.Lock()
	c.lastErr = cause
	c.mu.Unlock()
}

func (c *Coordinator) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// commit installs the reconciled session and profile unless the state was
// cleared while the reconciliation was in flight
func (c *Coordinator) commit(gen uint64, session *domain.Session, profile *domain.Profile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}

	c.session = session
	c.profile = profile
	c.lastErr = nil
	return true
}
