package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type leavesRepo struct {
	q querier
}

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, days_count, reason, status, remarks, applied_at, reviewed_at`

func scanLeave(s scanner) (domain.LeaveApplication, error) {
	var (
		l          domain.LeaveApplication
		appliedAt  int64
		reviewedAt sql.NullInt64
	)
	if err := s.Scan(&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.DaysCount,
		&l.Reason, &l.Status, &l.Remarks, &appliedAt, &reviewedAt); err != nil {
		return domain.LeaveApplication{}, err
	}
	l.AppliedAt = fromUnix(appliedAt)
	l.ReviewedAt = fromNullUnix(reviewedAt)
	return l, nil
}

func (r *leavesRepo) CreateLeave(ctx context.Context, l domain.LeaveApplication) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO leave_applications (employee_id, leave_type, start_date, end_date, days_count, reason, status, remarks, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate, l.DaysCount, l.Reason, l.Status, l.Remarks, unix(l.AppliedAt),
	)
}

func (r *leavesRepo) GetLeave(ctx context.Context, id int64) (domain.LeaveApplication, error) {
	l, err := scanLeave(r.q.queryRow(ctx, `SELECT `+leaveColumns+` FROM leave_applications WHERE id = ?`, id))
	if err != nil {
		return domain.LeaveApplication{}, mapNotFound(err)
	}
	return l, nil
}

func (r *leavesRepo) UpdatePendingLeave(ctx context.Context, l domain.LeaveApplication) (bool, error) {
	n, err := r.q.affected(ctx,
		`UPDATE leave_applications
		 SET leave_type = ?, start_date = ?, end_date = ?, days_count = ?, reason = ?
		 WHERE id = ? AND employee_id = ? AND status = ?`,
		l.LeaveType, l.StartDate, l.EndDate, l.DaysCount, l.Reason,
		l.ID, l.EmployeeID, domain.LeavePending,
	)
	return n == 1, err
}

func (r *leavesRepo) DeletePendingLeave(ctx context.Context, employeeID, id int64) (bool, error) {
	n, err := r.q.affected(ctx,
		`DELETE FROM leave_applications WHERE id = ? AND employee_id = ? AND status = ?`,
		id, employeeID, domain.LeavePending,
	)
	return n == 1, err
}

func (r *leavesRepo) ReviewLeave(ctx context.Context, id int64, status domain.LeaveStatus, remarks string, at time.Time) (bool, error) {
	n, err := r.q.affected(ctx,
		`UPDATE leave_applications SET status = ?, remarks = ?, reviewed_at = ?
		 WHERE id = ? AND status = ?`,
		status, remarks, unix(at), id, domain.LeavePending,
	)
	return n == 1, err
}

func (r *leavesRepo) ListLeaves(ctx context.Context, employeeID int64, status domain.LeaveStatus, page domain.PageRequest) ([]domain.LeaveApplication, int, error) {
	var (
		conds []string
		args  []any
	)
	if employeeID != 0 {
		conds = append(conds, `employee_id = ?`)
		args = append(args, employeeID)
	}
	if status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, status)
	}
	where := ``
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, ` AND `)
	}

	total, err := r.q.count(ctx, `SELECT COUNT(*) FROM leave_applications`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT `+leaveColumns+` FROM leave_applications`+where+` ORDER BY applied_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.LeaveApplication
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}
