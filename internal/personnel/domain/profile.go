package domain

import "time"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// EmployeeProfile is the personnel record of an employee. Dates are
// YYYY-MM-DD strings and empty when unknown.
type EmployeeProfile struct {
	UserID                 int64  `json:"user_id"`
	FirstName              string `json:"first_name"`
	MiddleName             string `json:"middle_name"`
	LastName               string `json:"last_name"`
	Suffix                 string `json:"suffix"`
	Rank                   string `json:"rank"`
	Unit                   string `json:"unit"`
	Station                string `json:"station"`
	Address                string `json:"address"`
	HomeAddress            string `json:"home_address"`
	Gender                 Gender `json:"gender"`
	DateOfBirth            string `json:"date_of_birth"`
	PlaceOfBirth           string `json:"place_of_birth"`
	Religion               string `json:"religion"`
	EmergencyContactName   string `json:"emergency_contact_name"`
	EmergencyRelationship  string `json:"emergency_relationship"`
	EmergencyContactNumber string `json:"emergency_contact_number"`
	ProfilePicture         string `json:"profile_picture"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationApproved ApplicationStatus = "Approved"
	ApplicationRejected ApplicationStatus = "Rejected"
)

type ApplicantProfile struct {
	UserID            int64             `json:"user_id"`
	FirstName         string            `json:"first_name"`
	MiddleName        string            `json:"middle_name"`
	LastName          string            `json:"last_name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Address           string            `json:"address"`
	ProfilePicture    string            `json:"profile_picture"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	AppliedAt         time.Time         `json:"applied_at"`
}

type AdminProfile struct {
	UserID         int64  `json:"user_id"`
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	ProfilePicture string `json:"profile_picture"`
}

type Education struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Level         string `json:"level"`
	SchoolName    string `json:"school_name"`
	YearGraduated int    `json:"year_graduated"`
}
