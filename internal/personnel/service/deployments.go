package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// DeploymentPatch changes only the fields that are set.
type DeploymentPatch struct {
	Status  *domain.DeploymentStatus
	EndDate *string
	Remarks *string
}

type DeploymentService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func validDeploymentStatus(s domain.DeploymentStatus) bool {
	switch s {
	case domain.DeploymentActive, domain.DeploymentCompleted, domain.DeploymentCancelled:
		return true
	}
	return false
}

// Create assigns an employee. A new Active deployment completes the previous
// one, ending it on the new start date.
func (s *DeploymentService) Create(ctx context.Context, d domain.Deployment) (domain.Deployment, error) {
	if d.Status == "" {
		d.Status = domain.DeploymentActive
	}
	if !validDeploymentStatus(d.Status) {
		return domain.Deployment{}, fmt.Errorf("%w: unknown deployment status %q", ErrInvalidRequest, d.Status)
	}
	d.CreatedAt = time.Now().UTC()
	if s.Now != nil {
		d.CreatedAt = s.Now().UTC()
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, d.EmployeeID)
		if err != nil {
			return err
		}
		if u.Role != domain.RoleEmployee {
			return fmt.Errorf("%w: user %d is not an employee", ErrInvalidRequest, d.EmployeeID)
		}

		if d.Status == domain.DeploymentActive {
			if _, err := tx.Deployments().CompleteActiveDeployments(ctx, d.EmployeeID, d.StartDate); err != nil {
				return fmt.Errorf("failed to complete previous deployment: %w", err)
			}
		}

		id, err := tx.Deployments().CreateDeployment(ctx, d)
		if err != nil {
			return fmt.Errorf("failed to create deployment: %w", err)
		}
		d.ID = id
		return nil
	})
	if err != nil {
		return domain.Deployment{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("deployment created", "deployment_id", d.ID, "employee_id", d.EmployeeID, "status", d.Status)
	return d, nil
}

func (s *DeploymentService) Update(ctx context.Context, id int64, patch DeploymentPatch) (domain.Deployment, error) {
	if patch.Status != nil && !validDeploymentStatus(*patch.Status) {
		return domain.Deployment{}, fmt.Errorf("%w: unknown deployment status %q", ErrInvalidRequest, *patch.Status)
	}

	var d domain.Deployment
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		d, err = tx.Deployments().GetDeployment(ctx, id)
		if err != nil {
			return err
		}

		if patch.Status != nil && *patch.Status == domain.DeploymentActive && d.Status != domain.DeploymentActive {
			if _, err := tx.Deployments().CompleteActiveDeployments(ctx, d.EmployeeID, d.StartDate); err != nil {
				return err
			}
		}
		if patch.Status != nil {
			d.Status = *patch.Status
		}
		if patch.EndDate != nil {
			d.EndDate = *patch.EndDate
		}
		if patch.Remarks != nil {
			d.Remarks = *patch.Remarks
		}
		return tx.Deployments().UpdateDeployment(ctx, d)
	})
	if err != nil {
		return domain.Deployment{}, notFound(err)
	}
	return d, nil
}

func (s *DeploymentService) List(ctx context.Context, employeeID int64, page domain.PageRequest) (domain.Page[domain.Deployment], error) {
	items, total, err := s.Store.Deployments().ListDeployments(ctx, employeeID, page)
	if err != nil {
		return domain.Page[domain.Deployment]{}, fmt.Errorf("failed to list deployments: %w", err)
	}
	return domain.NewPage(items, total, page), nil
}
