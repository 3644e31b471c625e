package domain

import "time"

type NotificationType string

const (
	NotificationApplicant NotificationType = "applicant"
	NotificationLeave     NotificationType = "leave"
	NotificationGeneral   NotificationType = "general"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	RelatedID int64            `json:"related_id,omitempty"`
	Read      bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
