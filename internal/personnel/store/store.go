package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the SQL drivers. It
// hands out sub-repositories so a transaction scoped Store looks exactly like
// the root one, and nobody can start a transaction inside a transaction.
type Store interface {
	Users() Users
	OTPCodes() OTPCodes
	Profiles() Profiles
	Education() Education
	Leaves() Leaves
	Deployments() Deployments
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is the credential lookup used at login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u and returns the new id. Duplicate username or email
	// gives ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	UpdateUserStatus(ctx context.Context, id int64, status domain.Status) error
	UpdateUserRole(ctx context.Context, id int64, role domain.Role) error
	SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// DeleteUser cascades to profiles, codes, leave, deployments and
	// notifications (per schema).
	DeleteUser(ctx context.Context, id int64) error

	// ListUsers pages through users, newest first. An empty role lists all.
	ListUsers(ctx context.Context, role domain.Role, page domain.PageRequest) ([]domain.User, int, error)

	// ListUserIDsByRole is used to fan out notifications to every admin.
	ListUserIDsByRole(ctx context.Context, role domain.Role) ([]int64, error)
}

type OTPCodes interface {
	// DeleteUnusedOTPCodes removes every unused code of the user.
	DeleteUnusedOTPCodes(ctx context.Context, userID int64) (int64, error)

	// CreateOTPCode inserts a new unused code. A second unused code for the
	// same user violates a partial unique index and gives ErrAlreadyExists.
	CreateOTPCode(ctx context.Context, c domain.OneTimeCode) (int64, error)

	// FindRedeemableOTPCode returns the newest unused code of the user equal to
	// code that expires after now.
	FindRedeemableOTPCode(ctx context.Context, userID int64, code string, now time.Time) (domain.OneTimeCode, error)

	// MarkOTPCodeUsed flips used from false to true. It returns false when the
	// row was already used (someone else won the race) or is gone.
	MarkOTPCodeUsed(ctx context.Context, id int64) (bool, error)

	// DeleteExpiredOTPCodes deletes codes that expired before now, used or not.
	DeleteExpiredOTPCodes(ctx context.Context, now time.Time) (int64, error)

	// ListOTPCodes returns all codes of a user, newest first.
	ListOTPCodes(ctx context.Context, userID int64) ([]domain.OneTimeCode, error)
}

type Profiles interface {
	GetEmployeeProfile(ctx context.Context, userID int64) (domain.EmployeeProfile, error)
	UpsertEmployeeProfile(ctx context.Context, p domain.EmployeeProfile) error

	GetApplicantProfile(ctx context.Context, userID int64) (domain.ApplicantProfile, error)
	CreateApplicantProfile(ctx context.Context, p domain.ApplicantProfile) error
	// UpdateApplicantProfile changes the contact fields and leaves the
	// application status alone.
	UpdateApplicantProfile(ctx context.Context, p domain.ApplicantProfile) error
	SetApplicationStatus(ctx context.Context, userID int64, status domain.ApplicationStatus) error
	// ListApplicants pages applicants, newest application first. An empty
	// status lists all.
	ListApplicants(ctx context.Context, status domain.ApplicationStatus, page domain.PageRequest) ([]domain.ApplicantProfile, int, error)

	GetAdminProfile(ctx context.Context, userID int64) (domain.AdminProfile, error)
	UpsertAdminProfile(ctx context.Context, p domain.AdminProfile) error
}

type Education interface {
	CreateEducation(ctx context.Context, e domain.Education) (int64, error)
	// ListEducation returns the user's education, most recent graduation first.
	ListEducation(ctx context.Context, userID int64) ([]domain.Education, error)
	DeleteEducation(ctx context.Context, userID, id int64) error
}

type Leaves interface {
	CreateLeave(ctx context.Context, l domain.LeaveApplication) (int64, error)
	GetLeave(ctx context.Context, id int64) (domain.LeaveApplication, error)

	// UpdatePendingLeave rewrites the request fields of a Pending leave owned
	// by l.EmployeeID. It returns false if no such row exists.
	UpdatePendingLeave(ctx context.Context, l domain.LeaveApplication) (bool, error)

	// DeletePendingLeave removes a Pending leave owned by employeeID.
	DeletePendingLeave(ctx context.Context, employeeID, id int64) (bool, error)

	// ReviewLeave moves a Pending leave to status and stamps reviewed_at.
	ReviewLeave(ctx context.Context, id int64, status domain.LeaveStatus, remarks string, at time.Time) (bool, error)

	// ListLeaves pages leave requests newest first. employeeID 0 lists every
	// employee and an empty status lists every status.
	ListLeaves(ctx context.Context, employeeID int64, status domain.LeaveStatus, page domain.PageRequest) ([]domain.LeaveApplication, int, error)
}

type Deployments interface {
	CreateDeployment(ctx context.Context, d domain.Deployment) (int64, error)
	GetDeployment(ctx context.Context, id int64) (domain.Deployment, error)
	// UpdateDeployment writes status, end date and remarks.
	UpdateDeployment(ctx context.Context, d domain.Deployment) error
	// CompleteActiveDeployments closes every Active deployment of the employee.
	CompleteActiveDeployments(ctx context.Context, employeeID int64, endDate string) (int64, error)
	// GetActiveDeployment returns the current Active deployment, latest start first.
	GetActiveDeployment(ctx context.Context, employeeID int64) (domain.Deployment, error)
	ListDeployments(ctx context.Context, employeeID int64, page domain.PageRequest) ([]domain.Deployment, int, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n domain.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID int64, page domain.PageRequest) ([]domain.Notification, int, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	// MarkNotificationRead only touches notifications owned by userID.
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
}
