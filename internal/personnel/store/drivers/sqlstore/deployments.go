package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type deploymentsRepo struct {
	q querier
}

const deploymentColumns = `id, employee_id, station, unit, position, start_date, end_date, status, remarks, created_at`

func scanDeployment(s scanner) (domain.Deployment, error) {
	var (
		d         domain.Deployment
		createdAt int64
	)
	if err := s.Scan(&d.ID, &d.EmployeeID, &d.Station, &d.Unit, &d.Position,
		&d.StartDate, &d.EndDate, &d.Status, &d.Remarks, &createdAt); err != nil {
		return domain.Deployment{}, err
	}
	d.CreatedAt = fromUnix(createdAt)
	return d, nil
}

func (r *deploymentsRepo) CreateDeployment(ctx context.Context, d domain.Deployment) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO deployments (employee_id, station, unit, position, start_date, end_date, status, remarks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		d.EmployeeID, d.Station, d.Unit, d.Position, d.StartDate, d.EndDate, d.Status, d.Remarks, unix(d.CreatedAt),
	)
}

func (r *deploymentsRepo) GetDeployment(ctx context.Context, id int64) (domain.Deployment, error) {
	d, err := scanDeployment(r.q.queryRow(ctx, `SELECT `+deploymentColumns+` FROM deployments WHERE id = ?`, id))
	if err != nil {
		return domain.Deployment{}, mapNotFound(err)
	}
	return d, nil
}

func (r *deploymentsRepo) UpdateDeployment(ctx context.Context, d domain.Deployment) error {
	return notFoundUnlessAffected(r.q.affected(ctx,
		`UPDATE deployments SET status = ?, end_date = ?, remarks = ? WHERE id = ?`,
		d.Status, d.EndDate, d.Remarks, d.ID,
	))
}

func (r *deploymentsRepo) CompleteActiveDeployments(ctx context.Context, employeeID int64, endDate string) (int64, error) {
	return r.q.affected(ctx,
		`UPDATE deployments SET status = ?, end_date = ? WHERE employee_id = ? AND status = ?`,
		domain.DeploymentCompleted, endDate, employeeID, domain.DeploymentActive,
	)
}

func (r *deploymentsRepo) GetActiveDeployment(ctx context.Context, employeeID int64) (domain.Deployment, error) {
	d, err := scanDeployment(r.q.queryRow(ctx,
		`SELECT `+deploymentColumns+` FROM deployments
		 WHERE employee_id = ? AND status = ?
		 ORDER BY start_date DESC, id DESC LIMIT 1`,
		employeeID, domain.DeploymentActive,
	))
	if err != nil {
		return domain.Deployment{}, mapNotFound(err)
	}
	return d, nil
}

func (r *deploymentsRepo) ListDeployments(ctx context.Context, employeeID int64, page domain.PageRequest) ([]domain.Deployment, int, error) {
	where, args := ``, []any{}
	if employeeID != 0 {
		where, args = ` WHERE employee_id = ?`, append(args, employeeID)
	}

	total, err := r.q.count(ctx, `SELECT COUNT(*) FROM deployments`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT `+deploymentColumns+` FROM deployments`+where+` ORDER BY start_date DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}
