package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
)

// Service defines the notification service interface
type Service interface {
	// Record persists n synchronously. It joins the transaction carried by ctx, if any.
	Record(ctx context.Context, n *Notification) error

	// Dispatch hands msg to the background push workers and returns immediately.
	// Delivery is best-effort: failures are logged, never returned.
	Dispatch(topic string, msg bus.Message)

	GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkAsRead(ctx context.Context, recipientID string, notificationID string) (NotificationResponse, error)
	MarkAllAsRead(ctx context.Context, recipientID string) error

	// Subscribe streams real-time events of the given topics until ctx ends or cleanup runs
	Subscribe(ctx context.Context, topics ...string) (<-chan SSEEvent, func())

	// Stop drains queued pushes and stops the workers
	Stop()
}
