package repository

import (
	"github.com/tradehub/tradehub-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Profile      ProfileRepository
	Professional ProfessionalRepository
	RoleChange   RoleChangeRepository
	Job          JobRepository
	Bid          BidRepository
	Message      MessageRepository
	Complaint    ComplaintRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Profile:      NewProfileRepository(db),
		Professional: NewProfessionalRepository(db),
		RoleChange:   NewRoleChangeRepository(db),
		Job:          NewJobRepository(db),
		Bid:          NewBidRepository(db),
		Message:      NewMessageRepository(db),
		Complaint:    NewComplaintRepository(db),
	}
}
