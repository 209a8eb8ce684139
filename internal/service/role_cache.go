package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

// RoleCacheService keeps the last known role per user in Redis. It is a
// best-effort hint used before reconciliation completes, never an
// authorization source.
type RoleCacheService struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewRoleCacheService creates a new role cache
func NewRoleCacheService(redis *database.Redis, ttl time.Duration) *RoleCacheService {
	return &RoleCacheService{redis: redis, ttl: ttl}
}

func roleKey(userID string) string {
	return fmt.Sprintf("role:user:%s", userID)
}

// SetRole records a user's role
func (s *RoleCacheService) SetRole(ctx context.Context, userID string, role domain.UserType) error {
	if err := s.redis.Client.Set(ctx, roleKey(userID), string(role), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}
	return nil
}

// Role returns a user's cached role, or empty when none is cached
func (s *RoleCacheService) Role(ctx context.Context, userID string) (domain.UserType, error) {
	value, err := s.redis.Client.Get(ctx, roleKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read cached role: %w", err)
	}
	return domain.UserType(value), nil
}

// Clear removes a user's cached role
func (s *RoleCacheService) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Client.Del(ctx, roleKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cached role: %w", err)
	}
	return nil
}
