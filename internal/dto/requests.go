package dto

// SignUpRequest represents a registration request
type SignUpRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	UserType        string `json:"user_type" binding:"required,oneof=homeowner professional"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Postcode  string `json:"postcode"`

	// Professional-only fields, ignored for homeowners
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number"`
	Trade              string `json:"trade"`
}

// SignInRequest represents a password login request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPRequest represents a passwordless login request
type OTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	UserType string `json:"user_type" binding:"required,oneof=homeowner professional"`
}

// UpdateProfileRequest is the allow-list of directly editable profile fields.
// The role is deliberately absent; role changes go through the
// request/approval flow.
type UpdateProfileRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Phone            *string `json:"phone"`
	Postcode         *string `json:"postcode"`
	PreferredContact *string `json:"preferred_contact"`
	Address          *string `json:"address"`
	AvatarURL        *string `json:"avatar_url"`
}

// RoleChangeRequest asks to switch between homeowner and professional
type RoleChangeRequest struct {
	RequestedRole string `json:"requested_role" binding:"required,oneof=homeowner professional"`
}

// CreateJobRequest represents a homeowner posting a job
type CreateJobRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Trade       string  `json:"trade" binding:"required"`
	Postcode    string  `json:"postcode" binding:"required"`
	BudgetMin   float64 `json:"budget_min" binding:"gte=0"`
	BudgetMax   float64 `json:"budget_max" binding:"gtefield=BudgetMin"`
}

// UpdateJobStatusRequest moves a job through its lifecycle
type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open assigned completed cancelled"`
}

// CreateBidRequest represents a professional bidding on a job
type CreateBidRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Message string  `json:"message"`
}

// SendMessageRequest posts a message into a job thread
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

// CreateComplaintRequest files a complaint against another user
type CreateComplaintRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	JobID     string `json:"job_id"`
	Category  string `json:"category" binding:"required"`
	Body      string `json:"body" binding:"required"`
}
