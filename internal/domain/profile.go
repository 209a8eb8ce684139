package domain

import "time"

// UserType represents the role a profile holds on the platform
type UserType string

const (
	UserTypeHomeowner    UserType = "homeowner"
	UserTypeProfessional UserType = "professional"
	UserTypeAdmin        UserType = "admin"
)

// Valid reports whether the user type is one of the known roles
func (t UserType) Valid() bool {
	switch t {
	case UserTypeHomeowner, UserTypeProfessional, UserTypeAdmin:
		return true
	}
	return false
}

// Profile represents the application-level identity record.
// The id doubles as the identity provider's user id; email is stored
// lower-cased and is unique among confirmed profiles.
type Profile struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	UserType         UserType  `json:"user_type" db:"user_type"`
	Confirmed        bool      `json:"confirmed" db:"confirmed"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	Phone            string    `json:"phone" db:"phone"`
	Postcode         string    `json:"postcode" db:"postcode"`
	PreferredContact string    `json:"preferred_contact" db:"preferred_contact"`
	Address          string    `json:"address" db:"address"`
	AvatarURL        string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ProfessionalDetails is the role-specific record linked to a professional
// profile, keyed by the same id
type ProfessionalDetails struct {
	ID                 string    `json:"id" db:"id"`
	CompanyName        string    `json:"company_name" db:"company_name"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
	Trade              string    `json:"trade" db:"trade"`
	Bio                string    `json:"bio" db:"bio"`
	HourlyRate         float64   `json:"hourly_rate" db:"hourly_rate"`
	YearsOfExperience  int       `json:"years_of_experience" db:"years_of_experience"`
	Rating             float64   `json:"rating" db:"rating"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// RoleChangeRequestStatus is the lifecycle state of a role change request
type RoleChangeRequestStatus string

const (
	RoleChangePending  RoleChangeRequestStatus = "pending"
	RoleChangeApproved RoleChangeRequestStatus = "approved"
	RoleChangeRejected RoleChangeRequestStatus = "rejected"
)

// RoleChangeRequest records a user's request to switch between homeowner and
// professional. Appended by the API, resolved only by an external approval
// process.
type RoleChangeRequest struct {
	ID            string                  `json:"id" db:"id"`
	UserID        string                  `json:"user_id" db:"user_id"`
	FromRole      UserType                `json:"from_role" db:"from_role"`
	RequestedRole UserType                `json:"requested_role" db:"requested_role"`
	Status        RoleChangeRequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at" db:"updated_at"`
}
