package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)

	// GetByRecipientID returns the page newest first, with the total count
	GetByRecipientID(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)

	// MarkAsRead flags exactly one notification owned by recipientID and returns it
	MarkAsRead(ctx context.Context, id string, recipientID string) (*Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
}
