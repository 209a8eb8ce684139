package domain

import "time"

// JobStatus is the lifecycle state of a posted job
type JobStatus string

const (
	JobOpen      JobStatus = "open"
	JobAssigned  JobStatus = "assigned"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
)

// Job is a unit of work posted by a homeowner
type Job struct {
	ID          string    `json:"id" db:"id"`
	HomeownerID string    `json:"homeowner_id" db:"homeowner_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Trade       string    `json:"trade" db:"trade"`
	Postcode    string    `json:"postcode" db:"postcode"`
	BudgetMin   float64   `json:"budget_min" db:"budget_min"`
	BudgetMax   float64   `json:"budget_max" db:"budget_max"`
	Status      JobStatus `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BidStatus is the lifecycle state of a bid
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// Bid is a professional's offer on an open job
type Bid struct {
	ID             string    `json:"id" db:"id"`
	JobID          string    `json:"job_id" db:"job_id"`
	ProfessionalID string    `json:"professional_id" db:"professional_id"`
	Amount         float64   `json:"amount" db:"amount"`
	Message        string    `json:"message" db:"message"`
	Status         BidStatus `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Message is a single entry in a per-job conversation thread
type Message struct {
	ID          string    `json:"id" db:"id"`
	JobID       string    `json:"job_id" db:"job_id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Body        string    `json:"body" db:"body"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ComplaintStatus is the lifecycle state of a complaint
type ComplaintStatus string

const (
	ComplaintOpen     ComplaintStatus = "open"
	ComplaintResolved ComplaintStatus = "resolved"
)

// Complaint is a report filed by one user against another, optionally tied to
// a job
type Complaint struct {
	ID         string          `json:"id" db:"id"`
	ReporterID string          `json:"reporter_id" db:"reporter_id"`
	SubjectID  string          `json:"subject_id" db:"subject_id"`
	JobID      *string         `json:"job_id,omitempty" db:"job_id"`
	Category   string          `json:"category" db:"category"`
	Body       string          `json:"body" db:"body"`
	Status     ComplaintStatus `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
