package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	PushTimeout time.Duration // default: 5 seconds
}

type push struct {
	topic string
	msg   bus.Message
}

type service struct {
	repo      notification.Repository
	publisher bus.Publisher
	hub       *sse.Hub
	metrics   *metrics.Metrics
	config    Config

	queue    chan push
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background push workers.
// hub serves local subscribers; publisher may fan out further, e.g. through Redis.
func NewNotificationService(repo notification.Repository, publisher bus.Publisher, hub *sse.Hub, m *metrics.Metrics, cfg Config) notification.Service {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 5 * time.Second
	}

	s := &service{
		repo:      repo,
		publisher: publisher,
		hub:       hub,
		metrics:   m,
		config:    cfg,
		queue:     make(chan push, cfg.QueueSize),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"queue_size", cfg.QueueSize,
		"push_timeout", cfg.PushTimeout,
	)

	return s
}

// worker publishes queued pushes until the queue is closed and drained
func (s *service) worker(id int) {
	defer s.wg.Done()

	for p := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.PushTimeout)
		err := s.publisher.Publish(ctx, p.topic, p.msg)
		cancel()

		if err != nil {
			s.metrics.IncrementPush("failed")
			slog.Warn("notification push failed",
				"worker", id,
				"topic", p.topic,
				"event", p.msg.Event,
				"error", err,
			)
			continue
		}
		s.metrics.IncrementPush("delivered")
	}
}

// Record persists the notification, inside the caller's transaction when ctx carries one
func (s *service) Record(ctx context.Context, n *notification.Notification) error {
	return s.repo.Create(ctx, n)
}

// Dispatch queues a push without blocking. A full queue drops the push.
func (s *service) Dispatch(topic string, msg bus.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		s.metrics.IncrementPush("dropped")
		slog.Warn("notification push after stop dropped", "topic", topic, "event", msg.Event)
		return
	}

	select {
	case s.queue <- push{topic: topic, msg: msg}:
	default:
		s.metrics.IncrementPush("dropped")
		slog.Warn("notification push dropped",
			"topic", topic,
			"event", msg.Event,
			"error", notification.ErrQueueFull,
		)
	}
}

// GetNotifications retrieves paginated notifications for an employee
func (s *service) GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByRecipientID(ctx, recipientID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}

// MarkAsRead marks one notification of recipientID as read
func (s *service) MarkAsRead(ctx context.Context, recipientID string, notificationID string) (notification.NotificationResponse, error) {
	n, err := s.repo.MarkAsRead(ctx, notificationID, recipientID)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	return notification.ToResponse(n), nil
}

// MarkAllAsRead marks all notifications as read for an employee
func (s *service) MarkAllAsRead(ctx context.Context, recipientID string) error {
	_, err := s.repo.MarkAllAsRead(ctx, recipientID)
	return err
}

// Subscribe merges the hub channels of every topic into one stream
func (s *service) Subscribe(ctx context.Context, topics ...string) (<-chan notification.SSEEvent, func()) {
	out := make(chan notification.SSEEvent, 10)
	done := make(chan struct{})

	cleanups := make([]func(), 0, len(topics))
	var wg sync.WaitGroup
	for _, topic := range topics {
		ch, cleanup := s.hub.Subscribe(topic)
		cleanups = append(cleanups, cleanup)

		wg.Add(1)
		go func(ch <-chan sse.Event) {
			defer wg.Done()
			for {
				select {
				case event, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: event.Data}:
					case <-done:
						return
					case <-ctx.Done():
						return
					}
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(done)
			for _, c := range cleanups {
				c()
			}
		})
	}

	return out, cleanup
}

// Stop closes the queue, waits for queued pushes to drain and stops the workers
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.queue)
		s.mu.Unlock()

		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}

