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

// LeaveRequest holds the fields an employee controls.
type LeaveRequest struct {
	LeaveType domain.LeaveType
	StartDate string
	EndDate   string
	DaysCount int
	Reason    string
}

func (r LeaveRequest) check() error {
	switch r.LeaveType {
	case domain.LeaveSick, domain.LeaveVacation, domain.LeaveEmergency, domain.LeaveMaternity, domain.LeavePaternity:
	default:
		return fmt.Errorf("%w: unknown leave type %q", ErrInvalidRequest, r.LeaveType)
	}
	// YYYY-MM-DD compares correctly as a string.
	if r.EndDate < r.StartDate {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidRequest)
	}
	if r.DaysCount < 1 {
		return fmt.Errorf("%w: days_count must be at least 1", ErrInvalidRequest)
	}
	return nil
}

type LeaveService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *LeaveService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Apply files a Pending leave and lets the admins know.
func (s *LeaveService) Apply(ctx context.Context, employeeID int64, r LeaveRequest) (domain.LeaveApplication, error) {
	if err := r.check(); err != nil {
		return domain.LeaveApplication{}, err
	}

	now := s.now()
	l := domain.LeaveApplication{
		EmployeeID: employeeID,
		LeaveType:  r.LeaveType,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		DaysCount:  r.DaysCount,
		Reason:     r.Reason,
		Status:     domain.LeavePending,
		AppliedAt:  now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.Leaves().CreateLeave(ctx, l)
		if err != nil {
			return fmt.Errorf("failed to create leave: %w", err)
		}
		l.ID = id

		return notifyRole(ctx, tx, domain.RoleAdmin, domain.NotificationLeave,
			"New Leave Application",
			fmt.Sprintf("%s requested %d day(s) from %s.", l.LeaveType, l.DaysCount, l.StartDate),
			id, now,
		)
	})
	if err != nil {
		return domain.LeaveApplication{}, err
	}

	slogx.FromContext(ctx).Info("leave applied", "leave_id", l.ID, "employee_id", employeeID)
	return l, nil
}

// Get returns a leave of the employee. Other employees' rows look missing.
func (s *LeaveService) Get(ctx context.Context, employeeID, id int64) (domain.LeaveApplication, error) {
	l, err := s.Store.Leaves().GetLeave(ctx, id)
	if err != nil {
		return domain.LeaveApplication{}, notFound(err)
	}
	if l.EmployeeID != employeeID {
		return domain.LeaveApplication{}, ErrNotFound
	}
	return l, nil
}

func (s *LeaveService) Update(ctx context.Context, employeeID, id int64, r LeaveRequest) (domain.LeaveApplication, error) {
	if err := r.check(); err != nil {
		return domain.LeaveApplication{}, err
	}

	ok, err := s.Store.Leaves().UpdatePendingLeave(ctx, domain.LeaveApplication{
		ID:         id,
		EmployeeID: employeeID,
		LeaveType:  r.LeaveType,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		DaysCount:  r.DaysCount,
		Reason:     r.Reason,
	})
	if err != nil {
		return domain.LeaveApplication{}, fmt.Errorf("failed to update leave: %w", err)
	}
	if !ok {
		return domain.LeaveApplication{}, s.whyNotEditable(ctx, employeeID, id)
	}
	return s.Get(ctx, employeeID, id)
}

func (s *LeaveService) Delete(ctx context.Context, employeeID, id int64) error {
	ok, err := s.Store.Leaves().DeletePendingLeave(ctx, employeeID, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave: %w", err)
	}
	if !ok {
		return s.whyNotEditable(ctx, employeeID, id)
	}
	slogx.FromContext(ctx).Info("leave withdrawn", "leave_id", id, "employee_id", employeeID)
	return nil
}

// whyNotEditable tells a reviewed leave apart from one that is not the
// employee's to touch.
func (s *LeaveService) whyNotEditable(ctx context.Context, employeeID, id int64) error {
	l, err := s.Get(ctx, employeeID, id)
	if err != nil {
		return err
	}
	if !l.Editable() {
		return ErrLeaveNotPending
	}
	return ErrNotFound
}

func (s *LeaveService) ListOwn(ctx context.Context, employeeID int64, page domain.PageRequest) (domain.Page[domain.LeaveApplication], error) {
	return s.list(ctx, employeeID, "", page)
}

func (s *LeaveService) ListAll(ctx context.Context, status domain.LeaveStatus, page domain.PageRequest) (domain.Page[domain.LeaveApplication], error) {
	return s.list(ctx, 0, status, page)
}

func (s *LeaveService) list(ctx context.Context, employeeID int64, status domain.LeaveStatus, page domain.PageRequest) (domain.Page[domain.LeaveApplication], error) {
	items, total, err := s.Store.Leaves().ListLeaves(ctx, employeeID, status, page)
	if err != nil {
		return domain.Page[domain.LeaveApplication]{}, fmt.Errorf("failed to list leaves: %w", err)
	}
	return domain.NewPage(items, total, page), nil
}

// Review approves or rejects a Pending leave and tells the employee.
func (s *LeaveService) Review(ctx context.Context, id int64, status domain.LeaveStatus, remarks string) (domain.LeaveApplication, error) {
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		return domain.LeaveApplication{}, fmt.Errorf("%w: status must be Approved or Rejected", ErrInvalidRequest)
	}

	now := s.now()
	var l domain.LeaveApplication
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		l, err = tx.Leaves().GetLeave(ctx, id)
		if err != nil {
			return err
		}

		ok, err := tx.Leaves().ReviewLeave(ctx, id, status, remarks, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLeaveNotPending
		}
		l.Status, l.Remarks, l.ReviewedAt = status, remarks, &now

		return notifyUser(ctx, tx, l.EmployeeID, domain.NotificationLeave,
			fmt.Sprintf("Leave Application %s", status),
			fmt.Sprintf("Your %s from %s to %s was %s.", l.LeaveType, l.StartDate, l.EndDate, status),
			id, now,
		)
	})
	if err != nil {
		if errors.Is(err, ErrLeaveNotPending) {
			return domain.LeaveApplication{}, err
		}
		return domain.LeaveApplication{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("leave reviewed", "leave_id", id, "status", status)
	return l, nil
}
