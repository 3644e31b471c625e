package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
	RoleApplicant Role = "applicant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleApplicant:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type User struct {
	ID               int64
	Username         string
	Email            string
	PasswordHash     string // argon2id PHC, or bcrypt for imported accounts
	Role             Role
	Status           Status
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

func (u User) Active() bool { return u.Status == StatusActive }
