package dto

// Result is the uniform envelope returned by auth-flow operations. Callers
// must check Success rather than rely on an error being raised.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Ok builds a successful result
func Ok(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail builds a failed result
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SignInData is the payload returned on a successful password sign-in
type SignInData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
	UserID       string `json:"user_id"`
	UserType     string `json:"user_type"`
}

// HomeownerDashboard aggregates counts for a homeowner's landing view
type HomeownerDashboard struct {
	OpenJobs       int `json:"open_jobs"`
	ActiveJobs     int `json:"active_jobs"`
	CompletedJobs  int `json:"completed_jobs"`
	PendingBids    int `json:"pending_bids"`
	UnreadMessages int `json:"unread_messages"`
}

// ProfessionalDashboard aggregates counts for a professional's landing view
type ProfessionalDashboard struct {
	AvailableJobs  int `json:"available_jobs"`
	PlacedBids     int `json:"placed_bids"`
	AcceptedBids   int `json:"accepted_bids"`
	UnreadMessages int `json:"unread_messages"`
}
