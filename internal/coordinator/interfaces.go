package coordinator

import (
	"context"

	"github.com/tradehub/tradehub-api/internal/domain"
)

// RoleCache is the durable best-effort store of a user's last known role.
// Informational only, never authoritative for access control.
type RoleCache interface {
	SetRole(ctx context.Context, userID string, role domain.UserType) error
	Role(ctx context.Context, userID string) (domain.UserType, error)
	Clear(ctx context.Context, userID string) error
}

// Notifier dispatches transactional email. Calls are best-effort; the
// coordinator never joins their failures into an operation's result.
type Notifier interface {
	SendConfirmation(ctx context.Context, email, redirectURL string) error
	SendWelcome(ctx context.Context, email, firstName string) error
}
