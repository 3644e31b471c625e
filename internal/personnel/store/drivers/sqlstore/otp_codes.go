package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type otpCodesRepo struct {
	q querier
}

const otpColumns = `id, user_id, code, created_at, expires_at, used`

func scanOTP(s scanner) (domain.OneTimeCode, error) {
	var (
		c                    domain.OneTimeCode
		createdAt, expiresAt int64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.Code, &createdAt, &expiresAt, &c.Used)
	c.CreatedAt = fromUnix(createdAt)
	c.ExpiresAt = fromUnix(expiresAt)
	return c, err
}

func (r *otpCodesRepo) DeleteUnusedOTPCodes(ctx context.Context, userID int64) (int64, error) {
	return r.q.affected(ctx, `DELETE FROM otp_codes WHERE user_id = ? AND used = ?`, userID, false)
}

func (r *otpCodesRepo) CreateOTPCode(ctx context.Context, c domain.OneTimeCode) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO otp_codes (user_id, code, created_at, expires_at, used)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		c.UserID, c.Code, unix(c.CreatedAt), unix(c.ExpiresAt), false,
	)
}

func (r *otpCodesRepo) FindRedeemableOTPCode(ctx context.Context, userID int64, code string, now time.Time) (domain.OneTimeCode, error) {
	c, err := scanOTP(r.q.queryRow(ctx,
		`SELECT `+otpColumns+` FROM otp_codes
		 WHERE user_id = ? AND code = ? AND used = ? AND expires_at > ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		userID, code, false, unix(now),
	))
	if err != nil {
		return domain.OneTimeCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *otpCodesRepo) MarkOTPCodeUsed(ctx context.Context, id int64) (bool, error) {
	n, err := r.q.affected(ctx, `UPDATE otp_codes SET used = ? WHERE id = ? AND used = ?`, true, id, false)
	return n == 1, err
}

func (r *otpCodesRepo) DeleteExpiredOTPCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.q.affected(ctx, `DELETE FROM otp_codes WHERE expires_at < ?`, unix(now))
}

func (r *otpCodesRepo) ListOTPCodes(ctx context.Context, userID int64) ([]domain.OneTimeCode, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+otpColumns+` FROM otp_codes WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OneTimeCode
	for rows.Next() {
		c, err := scanOTP(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
