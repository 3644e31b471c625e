package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type notificationsRepo struct {
	q querier
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) (int64, error) {
	return r.q.insert(ctx,
		`INSERT INTO notifications (user_id, title, message, type, related_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		n.UserID, n.Title, n.Message, n.Type, nullInt(n.RelatedID), false, unix(n.CreatedAt),
	)
}

func (r *notificationsRepo) ListNotifications(ctx context.Context, userID int64, page domain.PageRequest) ([]domain.Notification, int, error) {
	total, err := r.q.count(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT id, user_id, title, message, type, related_id, is_read, created_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n         domain.Notification
			relatedID sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &relatedID, &n.Read, &createdAt); err != nil {
			return nil, 0, err
		}
		n.RelatedID = relatedID.Int64
		n.CreatedAt = fromUnix(createdAt)
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *notificationsRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	return r.q.count(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`, userID, false)
}

func (r *notificationsRepo) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	return notFoundUnlessAffected(r.q.affected(ctx,
		`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID,
	))
}

func (r *notificationsRepo) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	return r.q.affected(ctx,
		`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`, true, userID, false,
	)
}
