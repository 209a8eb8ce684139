package repository

import (
	"context"

	"github.com/tradehub/tradehub-api/internal/domain"
)

// ProfileUpdate is the allow-list of profile fields an update may touch. A
// nil field is left unchanged. The role is not updatable here; role changes
// go through the role-change request flow.
type ProfileUpdate struct {
	FirstName        *string
	LastName         *string
	Phone            *string
	Postcode         *string
	PreferredContact *string
	Address          *string
	AvatarURL        *string
}

// ProfileRepository defines methods for profile operations
type ProfileRepository interface {
	FetchByID(ctx context.Context, id string) (*domain.Profile, error)
	// FindByIDOrEmail returns the single row matching either the id or the
	// lower-cased email. Used to detect pre-existing rows before insert.
	FindByIDOrEmail(ctx context.Context, id, email string) (*domain.Profile, error)
	Insert(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, id string, updates *ProfileUpdate) (*domain.Profile, error)
	// UpdateID repairs a row's primary key in place, for rows pre-created
	// under a temporary key with the same email.
	UpdateID(ctx context.Context, oldID, newID string) (*domain.Profile, error)
	// SetConfirmed mirrors the identity provider's email confirmation into
	// the local row.
	SetConfirmed(ctx context.Context, id string) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

// ProfessionalRepository defines methods for professional-details operations
type ProfessionalRepository interface {
	Insert(ctx context.Context, details *domain.ProfessionalDetails) error
	FetchByID(ctx context.Context, id string) (*domain.ProfessionalDetails, error)
}

// RoleChangeRepository defines methods for role-change request operations
type RoleChangeRepository interface {
	Insert(ctx context.Context, req *domain.RoleChangeRequest) error
	ListByUser(ctx context.Context, userID string) ([]*domain.RoleChangeRequest, error)
}

// JobRepository defines methods for job operations
type JobRepository interface {
	Insert(ctx context.Context, job *domain.Job) error
	FetchByID(ctx context.Context, id string) (*domain.Job, error)
	ListByHomeowner(ctx context.Context, homeownerID string) ([]*domain.Job, error)
	ListOpen(ctx context.Context, trade string) ([]*domain.Job, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error)
	CountByHomeowner(ctx context.Context, homeownerID string, status domain.JobStatus) (int, error)
	CountOpen(ctx context.Context, trade string) (int, error)
}

// BidRepository defines methods for bid operations
type BidRepository interface {
	Insert(ctx context.Context, bid *domain.Bid) error
	FetchByID(ctx context.Context, id string) (*domain.Bid, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.Bid, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]*domain.Bid, error)
	UpdateStatus(ctx context.Context, id string, status domain.BidStatus) (*domain.Bid, error)
	CountPendingForHomeowner(ctx context.Context, homeownerID string) (int, error)
	CountByProfessional(ctx context.Context, professionalID string, status domain.BidStatus) (int, error)
}

// MessageRepository defines methods for message operations
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	ListThread(ctx context.Context, jobID string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, jobID, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

// ComplaintRepository defines methods for complaint operations
type ComplaintRepository interface {
	Insert(ctx context.Context, complaint *domain.Complaint) error
	ListByReporter(ctx context.Context, reporterID string) ([]*domain.Complaint, error)
}
