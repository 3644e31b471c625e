package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type educationRepo struct {
	q querier
}

func (r *educationRepo) CreateEducation(ctx context.Context, e domain.Education) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO education (user_id, level, school_name, year_graduated) VALUES (?, ?, ?, ?) RETURNING id`,
		e.UserID, e.Level, e.SchoolName, e.YearGraduated,
	)
}

func (r *educationRepo) ListEducation(ctx context.Context, userID int64) ([]domain.Education, error) {
	rows, err := r.q.query(ctx,
		`SELECT id, user_id, level, school_name, year_graduated
		 FROM education WHERE user_id = ? ORDER BY year_graduated DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Education
	for rows.Next() {
		var e domain.Education
		if err := rows.Scan(&e.ID, &e.UserID, &e.Level, &e.SchoolName, &e.YearGraduated); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *educationRepo) DeleteEducation(ctx context.Context, userID, id int64) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `DELETE FROM education WHERE id = ? AND user_id = ?`, id, userID))
}
