package domain

import "time"

type LeaveType string

const (
	LeaveSick      LeaveType = "Sick Leave"
	LeaveVacation  LeaveType = "Vacation Leave"
	LeaveEmergency LeaveType = "Emergency Leave"
	LeaveMaternity LeaveType = "Maternity Leave"
	LeavePaternity LeaveType = "Paternity Leave"
)

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

type LeaveApplication struct {
	ID         int64       `json:"id"`
	EmployeeID int64       `json:"employee_id"`
	LeaveType  LeaveType   `json:"leave_type"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	DaysCount  int         `json:"days_count"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status"`
	Remarks    string      `json:"remarks"`
	AppliedAt  time.Time   `json:"applied_at"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`
}

// Editable is true while an employee may still change or withdraw the request.
func (l LeaveApplication) Editable() bool { return l.Status == LeavePending }
