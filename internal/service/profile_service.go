package service

import (
	"context"
	"fmt"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/repository"
	"go.uber.org/zap"
)

// ProfileService serves the authenticated profile endpoints. Updates go
// through the same allow-list as the coordinator's session-bound update, so
// the role can never be edited directly.
type ProfileService struct {
	profiles      repository.ProfileRepository
	professionals repository.ProfessionalRepository
	roles         *RoleCacheService
	logger        *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profiles repository.ProfileRepository,
	professionals repository.ProfessionalRepository,
	roles *RoleCacheService,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:      profiles,
		professionals: professionals,
		roles:         roles,
		logger:        logger,
	}
}

// Get returns a profile, with professional details attached for
// professionals
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, *domain.ProfessionalDetails, error) {
	profile, err := s.profiles.FetchByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if profile.UserType != domain.UserTypeProfessional {
		return profile, nil, nil
	}

	details, err := s.professionals.FetchByID(ctx, id)
	if err != nil {
		// Details may not exist yet for a freshly signed-up professional
		s.logger.Debug("professional details missing", zap.String("user_id", id), zap.Error(err))
		return profile, nil, nil
	}

	return profile, details, nil
}

// Update applies the allow-listed fields and refreshes the role cache from
// the returned row
func (s *ProfileService) Update(ctx context.Context, id string, updates *dto.UpdateProfileRequest) (*domain.Profile, error) {
	updated, err := s.profiles.Update(ctx, id, &repository.ProfileUpdate{
		FirstName:        updates.FirstName,
		LastName:         updates.LastName,
		Phone:            updates.Phone,
		Postcode:         updates.Postcode,
		PreferredContact: updates.PreferredContact,
		Address:          updates.Address,
		AvatarURL:        updates.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := s.roles.SetRole(ctx, updated.ID, updated.UserType); err != nil {
		s.logger.Debug("role cache write failed", zap.Error(err))
	}

	return updated, nil
}

// SetAvatar stores an uploaded avatar's public URL on the profile
func (s *ProfileService) SetAvatar(ctx context.Context, id, avatarURL string) (*domain.Profile, error) {
	updated, err := s.profiles.Update(ctx, id, &repository.ProfileUpdate{AvatarURL: &avatarURL})
	if err != nil {
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}
	return updated, nil
}

// Delete removes the profile row and the cached role. Professional details
// and owned records cascade at the database level.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.roles.Clear(ctx, id); err != nil {
		s.logger.Debug("role cache clear failed", zap.Error(err))
	}

	return nil
}
