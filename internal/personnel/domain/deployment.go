package domain

import "time"

type DeploymentStatus string

const (
	DeploymentActive    DeploymentStatus = "Active"
	DeploymentCompleted DeploymentStatus = "Completed"
	DeploymentCancelled DeploymentStatus = "Cancelled"
)

// Deployment assigns an employee to a station and unit for a period. An
// employee has at most one Active deployment.
type Deployment struct {
	ID         int64            `json:"id"`
	EmployeeID int64            `json:"employee_id"`
	Station    string           `json:"station"`
	Unit       string           `json:"unit"`
	Position   string           `json:"position"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	Status     DeploymentStatus `json:"status"`
	Remarks    string           `json:"remarks"`
	CreatedAt  time.Time        `json:"created_at"`
}
