package pnpsdk

// Session states reported by the auth endpoints.
const (
	StateAnonymous     = "anonymous"
	StateOTPRequired   = "otp_required"
	StateAuthenticated = "authenticated"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=256"`
}

type VerifyOTPRequest struct {
	Code string `json:"code" validate:"required,numeric,min=4,max=10"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50,username"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required,min=8,max=256"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// SessionResponse describes where the caller is in the login flow.
type SessionResponse struct {
	State    string `json:"state"`
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// ============================================================================
// Users
// ============================================================================

type UserResponse struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	CreatedAt        string `json:"created_at"`
}

type CreateUserRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=50,username"`
	Email            string `json:"email" validate:"required,email,max=100"`
	Password         string `json:"password" validate:"required,min=8,max=256"`
	Role             string `json:"role" validate:"required,oneof=admin employee applicant"`
	Status           string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	TwoFactorEnabled *bool  `json:"two_factor_enabled"`
}

// UpdateUserRequest changes only the fields present in the body.
type UpdateUserRequest struct {
	Status           *string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Role             *string `json:"role" validate:"omitempty,oneof=admin employee applicant"`
	TwoFactorEnabled *bool   `json:"two_factor_enabled"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ============================================================================
// Profiles
// ============================================================================

type EmployeeProfileRequest struct {
	FirstName              string `json:"first_name" validate:"required,max=100"`
	MiddleName             string `json:"middle_name" validate:"max=100"`
	LastName               string `json:"last_name" validate:"required,max=100"`
	Suffix                 string `json:"suffix" validate:"max=20"`
	Rank                   string `json:"rank" validate:"max=50"`
	Unit                   string `json:"unit" validate:"max=100"`
	Station                string `json:"station" validate:"max=100"`
	Address                string `json:"address" validate:"max=255"`
	HomeAddress            string `json:"home_address" validate:"max=255"`
	Gender                 string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth            string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth           string `json:"place_of_birth" validate:"max=255"`
	Religion               string `json:"religion" validate:"max=100"`
	EmergencyContactName   string `json:"emergency_contact_name" validate:"max=100"`
	EmergencyRelationship  string `json:"emergency_relationship" validate:"max=50"`
	EmergencyContactNumber string `json:"emergency_contact_number" validate:"max=20"`
	ProfilePicture         string `json:"profile_picture" validate:"max=255"`
}

type ApplicantProfileRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"max=20"`
	Address    string `json:"address" validate:"max=255"`
}

type AdminProfileRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	MiddleName     string `json:"middle_name" validate:"max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"omitempty,email,max=100"`
	Phone          string `json:"phone" validate:"max=20"`
	ProfilePicture string `json:"profile_picture" validate:"max=255"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

type EducationRequest struct {
	Level         string `json:"level" validate:"required,max=50"`
	SchoolName    string `json:"school_name" validate:"required,max=255"`
	YearGraduated int    `json:"year_graduated" validate:"gte=1900,lte=2100"`
}

// ============================================================================
// Leave and deployments
// ============================================================================

type LeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,oneof='Sick Leave' 'Vacation Leave' 'Emergency Leave' 'Maternity Leave' 'Paternity Leave'"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	DaysCount int    `json:"days_count" validate:"gte=1"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

type LeaveReviewRequest struct {
	Status  string `json:"status" validate:"required,oneof=Approved Rejected"`
	Remarks string `json:"remarks" validate:"max=1000"`
}

type DeploymentRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Station    string `json:"station" validate:"required,max=100"`
	Unit       string `json:"unit" validate:"max=100"`
	Position   string `json:"position" validate:"max=100"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Completed Cancelled"`
	Remarks    string `json:"remarks" validate:"max=1000"`
}

// UpdateDeploymentRequest changes only the fields present in the body.
type UpdateDeploymentRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=Active Completed Cancelled"`
	EndDate *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Remarks *string `json:"remarks" validate:"omitempty,max=1000"`
}

// ============================================================================
// Notifications
// ============================================================================

type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID int64  `json:"related_id,omitempty"`
	Read      bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// Inbox is a page of notifications plus the unread total.
type Inbox struct {
	Page[Notification]
	Unread int `json:"unread"`
}
