package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
)

type NotificationService struct {
	Store store.Store
}

// Inbox is one page of a user's notifications plus the unread total.
type Inbox struct {
	domain.Page[domain.Notification]
	Unread int `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, userID int64, page domain.PageRequest) (Inbox, error) {
	items, total, err := s.Store.Notifications().ListNotifications(ctx, userID, page)
	if err != nil {
		return Inbox{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.Store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return Inbox{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return Inbox{Page: domain.NewPage(items, total, page), Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	err := s.Store.Notifications().MarkNotificationRead(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.Store.Notifications().MarkAllNotificationsRead(ctx, userID)
}

// notifyUser writes a notification through whichever store or transaction
// the caller is using.
func notifyUser(ctx context.Context, st store.Store, userID int64, typ domain.NotificationType, title, message string, relatedID int64, now time.Time) error {
	_, err := st.Notifications().CreateNotification(ctx, domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		RelatedID: relatedID,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// notifyRole fans a notification out to every user holding role.
func notifyRole(ctx context.Context, st store.Store, role domain.Role, typ domain.NotificationType, title, message string, relatedID int64, now time.Time) error {
	ids, err := st.Users().ListUserIDsByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to list %s users: %w", role, err)
	}
	for _, id := range ids {
		if err := notifyUser(ctx, st, id, typ, title, message, relatedID, now); err != nil {
			return err
		}
	}
	return nil
}
