package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type usersRepo struct {
	q querier
}

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, username, email, password_hash, role, status, two_factor_enabled, created_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.TwoFactorEnabled, &createdAt)
	u.CreatedAt = fromUnix(createdAt)
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO users (username, email, password_hash, role, status, two_factor_enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.Status, u.TwoFactorEnabled, unix(u.CreatedAt),
	)
}

func (r *usersRepo) UpdateUserStatus(ctx context.Context, id int64, status domain.Status) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `UPDATE users SET status = ? WHERE id = ?`, status, id))
}

func (r *usersRepo) UpdateUserRole(ctx context.Context, id int64, role domain.Role) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id))
}

func (r *usersRepo) SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `UPDATE users SET two_factor_enabled = ? WHERE id = ?`, enabled, id))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id))
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	return notFoundUnlessAffected(r.q.affected(ctx, `DELETE FROM users WHERE id = ?`, id))
}

func (r *usersRepo) ListUsers(ctx context.Context, role domain.Role, page domain.PageRequest) ([]domain.User, int, error) {
	where, args := ``, []any{}
	if role != "" {
		where, args = ` WHERE role = ?`, append(args, role)
	}

	total, err := r.q.count(ctx, `SELECT COUNT(*) FROM users`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *usersRepo) ListUserIDsByRole(ctx context.Context, role domain.Role) ([]int64, error) {
	rows, err := r.q.query(ctx, `SELECT id FROM users WHERE role = ? ORDER BY id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
