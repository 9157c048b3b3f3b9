//go:build integration

package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-presence-go/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/hris-presence-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-presence-go/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, bus.Message) error {
	return errors.New("redis: connection refused")
}

func TestTransition_ApprovalPersistsAuditAndNotification(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	employeeID := createEmployee(t, db, "Rina", "active")
	adminID := "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a69"

	notifier := notificationService.NewNotificationService(postgresql.NewNotificationRepository(db), failingPublisher{}, sse.NewHub(), nil, notificationService.Config{WorkerCount: 1})
	defer notifier.Stop()

	svc := leaveService.NewLeaveService(
		postgresql.NewTransactor(db),
		postgresql.NewLeaveRequestRepository(db),
		postgresql.NewLeaveAuditRepository(db),
		notifier,
		nil,
	)

	created, err := svc.CreateLeaveRequest(ctx, user.Actor{UserID: "usr-1", EmployeeID: &employeeID, Role: user.RoleEmployee}, leave.CreateLeaveRequestRequest{
		LeaveType: "annual",
		StartDate: "2026-04-06",
		EndDate:   "2026-04-08",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusPending, created.Status)

	approved, err := svc.Transition(ctx, leave.TransitionRequest{RequestID: created.ID, Status: "approved"}, &adminID)
	require.NoError(t, err, "a failing push never fails the transition")
	assert.Equal(t, leave.LeaveRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.EmployeeName)
	assert.Equal(t, "Rina", *approved.EmployeeName)

	// same status again is a no-op
	_, err = svc.Transition(ctx, leave.TransitionRequest{RequestID: created.ID, Status: "approved"}, &adminID)
	require.NoError(t, err)

	audits, err := svc.ListAudits(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, leave.AuditActionApproved, audits[0].Action)
	require.NotNil(t, audits[0].AdminID)
	assert.Equal(t, adminID, *audits[0].AdminID)

	list, err := notifier.GetNotifications(ctx, employeeID, 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "leave approved", list.Notifications[0].Title)
	assert.Equal(t, created.ID, list.Notifications[0].LeaveRequestID)
}

func TestTransition_RollsBackOnNotificationFailure(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	employeeID := createEmployee(t, db, "Yusuf", "active")
	adminID := "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a69"

	requests := postgresql.NewLeaveRequestRepository(db)
	created, err := requests.Create(ctx, leave.LeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  "sick",
		StartDate:  day(2026, 4, 6),
		EndDate:    day(2026, 4, 6),
	})
	require.NoError(t, err)

	// the notification table rejects titles over 200 characters, failing the last write of the unit
	notifier := &titleOverride{Service: notificationService.NewNotificationService(postgresql.NewNotificationRepository(db), bus.NewHubPublisher(sse.NewHub()), sse.NewHub(), nil, notificationService.Config{})}
	defer notifier.Stop()

	svc := leaveService.NewLeaveService(postgresql.NewTransactor(db), requests, postgresql.NewLeaveAuditRepository(db), notifier, nil)

	_, err = svc.Transition(ctx, leave.TransitionRequest{RequestID: created.ID, Status: "approved"}, &adminID)
	require.Error(t, err)

	current, err := requests.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusPending, current.Status)

	audits, err := postgresql.NewLeaveAuditRepository(db).ListByRequestID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, audits)
}

type titleOverride struct {
	notification.Service
}

func (o *titleOverride) Record(ctx context.Context, n *notification.Notification) error {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	n.Title = string(long)
	return o.Service.Record(ctx, n)
}

func TestLeaveRequests_List(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	alice := createEmployee(t, db, "Alice", "active")
	bob := createEmployee(t, db, "Bob", "active")
	repo := postgresql.NewLeaveRequestRepository(db)

	for _, seed := range []struct {
		employeeID string
		status     leave.LeaveRequestStatus
	}{
		{alice, leave.LeaveRequestStatusPending},
		{alice, leave.LeaveRequestStatusApproved},
		{bob, leave.LeaveRequestStatusPending},
	} {
		_, err := repo.Create(ctx, leave.LeaveRequest{
			EmployeeID: seed.employeeID,
			LeaveType:  "annual",
			StartDate:  day(2026, 5, 4),
			EndDate:    day(2026, 5, 5),
			Status:     seed.status,
		})
		require.NoError(t, err)
	}

	pending := "pending"
	requests, total, err := repo.List(ctx, leave.LeaveRequestFilter{Status: &pending, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, requests, 2)

	requests, total, err = repo.List(ctx, leave.LeaveRequestFilter{EmployeeID: &alice, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, requests, 1)
	assert.Equal(t, leave.LeaveRequestStatusApproved, requests[0].Status, "newest first")

	_, err = repo.GetByID(ctx, "0190e1f4-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestNotifications_ReadState(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	alice := createEmployee(t, db, "Alice", "active")
	bob := createEmployee(t, db, "Bob", "active")

	request, err := postgresql.NewLeaveRequestRepository(db).Create(ctx, leave.LeaveRequest{
		EmployeeID: alice,
		LeaveType:  "annual",
		StartDate:  day(2026, 5, 4),
		EndDate:    day(2026, 5, 4),
	})
	require.NoError(t, err)

	repo := postgresql.NewNotificationRepository(db)
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &notification.Notification{
			LeaveRequestID: request.ID,
			RecipientID:    alice,
			Title:          title,
			Message:        title,
		}))
		time.Sleep(5 * time.Millisecond)
	}

	page, total, err := repo.GetByRecipientID(ctx, alice, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].Title)

	_, err = repo.MarkAsRead(ctx, page[0].ID, bob)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound, "only the recipient can read it")

	read, err := repo.MarkAsRead(ctx, page[0].ID, alice)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	again, err := repo.MarkAsRead(ctx, page[0].ID, alice)
	require.NoError(t, err)
	assert.True(t, again.ReadAt.Equal(*read.ReadAt), "first read time is kept")

	unread, err := repo.GetUnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	changed, err := repo.MarkAllAsRead(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	unread, err = repo.GetUnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
