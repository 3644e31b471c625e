package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// EmployeeRecords is the personnel sheet shown to an employee.
type EmployeeRecords struct {
	Username   string                  `json:"username"`
	Email      string                  `json:"email"`
	Status     domain.Status           `json:"status"`
	Profile    *domain.EmployeeProfile `json:"profile"`
	Education  []domain.Education      `json:"education"`
	Deployment *domain.Deployment      `json:"current_deployment"`
}

type ProfileService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// EmployeeProfile returns the stored profile, or an empty one keyed to the
// user when none was saved yet.
func (s *ProfileService) EmployeeProfile(ctx context.Context, userID int64) (domain.EmployeeProfile, error) {
	p, err := s.Store.Profiles().GetEmployeeProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.EmployeeProfile{UserID: userID}, nil
	}
	return p, err
}

func (s *ProfileService) SaveEmployeeProfile(ctx context.Context, p domain.EmployeeProfile) (domain.EmployeeProfile, error) {
	if err := s.Store.Profiles().UpsertEmployeeProfile(ctx, p); err != nil {
		return domain.EmployeeProfile{}, fmt.Errorf("failed to save employee profile: %w", err)
	}
	slogx.FromContext(ctx).Info("employee profile saved", "user_id", p.UserID)
	return s.Store.Profiles().GetEmployeeProfile(ctx, p.UserID)
}

// Records gathers the profile, education and current deployment of an employee.
func (s *ProfileService) Records(ctx context.Context, userID int64) (EmployeeRecords, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return EmployeeRecords{}, notFound(err)
	}
	rec := EmployeeRecords{Username: u.Username, Email: u.Email, Status: u.Status, Education: []domain.Education{}}

	p, err := s.Store.Profiles().GetEmployeeProfile(ctx, userID)
	switch {
	case err == nil:
		rec.Profile = &p
	case !errors.Is(err, store.ErrNotFound):
		return EmployeeRecords{}, fmt.Errorf("failed to load profile: %w", err)
	}

	edu, err := s.Store.Education().ListEducation(ctx, userID)
	if err != nil {
		return EmployeeRecords{}, fmt.Errorf("failed to load education: %w", err)
	}
	if edu != nil {
		rec.Education = edu
	}

	d, err := s.Store.Deployments().GetActiveDeployment(ctx, userID)
	switch {
	case err == nil:
		rec.Deployment = &d
	case !errors.Is(err, store.ErrNotFound):
		return EmployeeRecords{}, fmt.Errorf("failed to load deployment: %w", err)
	}
	return rec, nil
}

func (s *ProfileService) AddEducation(ctx context.Context, e domain.Education) (domain.Education, error) {
	id, err := s.Store.Education().CreateEducation(ctx, e)
	if err != nil {
		return domain.Education{}, fmt.Errorf("failed to add education: %w", err)
	}
	e.ID = id
	return e, nil
}

func (s *ProfileService) DeleteEducation(ctx context.Context, userID, id int64) error {
	return notFound(s.Store.Education().DeleteEducation(ctx, userID, id))
}

func (s *ProfileService) ApplicantProfile(ctx context.Context, userID int64) (domain.ApplicantProfile, error) {
	p, err := s.Store.Profiles().GetApplicantProfile(ctx, userID)
	return p, notFound(err)
}

// SaveApplicantProfile updates contact details. The application status is
// only changed by admins.
func (s *ProfileService) SaveApplicantProfile(ctx context.Context, p domain.ApplicantProfile) (domain.ApplicantProfile, error) {
	if err := s.Store.Profiles().UpdateApplicantProfile(ctx, p); err != nil {
		return domain.ApplicantProfile{}, notFound(err)
	}
	return s.ApplicantProfile(ctx, p.UserID)
}

func (s *ProfileService) ListApplicants(ctx context.Context, status domain.ApplicationStatus, page domain.PageRequest) (domain.Page[domain.ApplicantProfile], error) {
	items, total, err := s.Store.Profiles().ListApplicants(ctx, status, page)
	if err != nil {
		return domain.Page[domain.ApplicantProfile]{}, fmt.Errorf("failed to list applicants: %w", err)
	}
	return domain.NewPage(items, total, page), nil
}

// SetApplicationStatus records an admin decision. Approval and rejection are
// announced to the applicant.
func (s *ProfileService) SetApplicationStatus(ctx context.Context, userID int64, status domain.ApplicationStatus) (domain.ApplicantProfile, error) {
	switch status {
	case domain.ApplicationPending, domain.ApplicationApproved, domain.ApplicationRejected:
	default:
		return domain.ApplicantProfile{}, fmt.Errorf("%w: unknown application status %q", ErrInvalidRequest, status)
	}

	now := s.now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().SetApplicationStatus(ctx, userID, status); err != nil {
			return err
		}
		switch status {
		case domain.ApplicationApproved:
			return notifyUser(ctx, tx, userID, domain.NotificationApplicant,
				"Application Approved", "Your application has been approved.", userID, now)
		case domain.ApplicationRejected:
			return notifyUser(ctx, tx, userID, domain.NotificationApplicant,
				"Application Update", "Your application was not approved.", userID, now)
		}
		return nil
	})
	if err != nil {
		return domain.ApplicantProfile{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("application status changed", "user_id", userID, "status", status)
	return s.ApplicantProfile(ctx, userID)
}

func (s *ProfileService) AdminProfile(ctx context.Context, userID int64) (domain.AdminProfile, error) {
	p, err := s.Store.Profiles().GetAdminProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AdminProfile{UserID: userID}, nil
	}
	return p, err
}

func (s *ProfileService) SaveAdminProfile(ctx context.Context, p domain.AdminProfile) (domain.AdminProfile, error) {
	if err := s.Store.Profiles().UpsertAdminProfile(ctx, p); err != nil {
		return domain.AdminProfile{}, fmt.Errorf("failed to save admin profile: %w", err)
	}
	return s.Store.Profiles().GetAdminProfile(ctx, p.UserID)
}
