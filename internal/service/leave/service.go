package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-presence-go/internal/service/leave")

type LeaveServiceImpl struct {
	tx       database.Transactor
	requests leave.LeaveRequestRepository
	audits   leave.AuditRepository
	notifier notification.Service
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	auditRepository leave.AuditRepository,
	notifier notification.Service,
	m *metrics.Metrics,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:       tx,
		requests: leaveRequestRepository,
		audits:   auditRepository,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// CreateLeaveRequest files a pending request for the actor's own employee profile
// and announces it to the admins topic.
func (l *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if actor.EmployeeID == nil {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeProfileRequired
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _ := time.Parse(leaveDateLayout, req.StartDate)
	end, _ := time.Parse(leaveDateLayout, req.EndDate)

	created, err := l.requests.Create(context.WithoutCancel(ctx), leave.LeaveRequest{
		EmployeeID:  *actor.EmployeeID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		Description: req.Description,
		Status:      leave.LeaveRequestStatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	response := leave.ToLeaveRequestResponse(created)
	l.notifier.Dispatch(bus.TopicAdmins, bus.Message{
		Event: notification.EventLeaveRequestCreated,
		Data:  response,
	})

	return response, nil
}

// Transition implements leave.LeaveService.
func (l *LeaveServiceImpl) Transition(ctx context.Context, req leave.TransitionRequest, actingAdminID *string) (leave.LeaveRequestResponse, error) {
	ctx, span := tracer.Start(ctx, "leave.Transition")
	defer span.End()

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	span.SetAttributes(
		attribute.String("leave.request_id", req.RequestID),
		attribute.String("leave.status", req.Status),
	)

	var (
		result  leave.LeaveRequest
		effects leave.Effects
		sent    *notification.Notification
	)

	// The unit commits even if the caller goes away mid-request.
	err := l.tx.WithinTransaction(context.WithoutCancel(ctx), func(ctx context.Context) error {
		current, err := l.requests.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}

		next := current
		updates := req.Updates()
		if err := next.Apply(updates); err != nil {
			return err
		}

		target := leave.LeaveRequestStatus(req.Status)
		effects = leave.EffectsOf(current.Status, target, actingAdminID != nil)
		next.Status = target

		if effects.StatusChanged || !updates.IsEmpty() {
			if err := l.requests.Update(ctx, next); err != nil {
				return fmt.Errorf("failed to update leave request: %w", err)
			}
			next.UpdatedAt = l.now()
		}

		if effects.Audit != nil {
			if _, err := l.audits.Create(ctx, leave.Audit{
				LeaveRequestID: next.ID,
				AdminID:        actingAdminID,
				Action:         *effects.Audit,
				Reason:         req.Reason,
			}); err != nil {
				return fmt.Errorf("failed to write leave audit: %w", err)
			}
		}

		if effects.Notify {
			title, message := leave.NotificationContent(next, req.Reason)
			n := &notification.Notification{
				LeaveRequestID: next.ID,
				RecipientID:    next.EmployeeID,
				Title:          title,
				Message:        message,
			}
			if err := l.notifier.Record(ctx, n); err != nil {
				return fmt.Errorf("failed to record notification: %w", err)
			}
			sent = n
		}

		result = next
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return leave.LeaveRequestResponse{}, err
	}

	if effects.StatusChanged {
		l.metrics.IncrementTransition(req.Status, effects.Audit != nil)
		slog.Info("leave request transitioned",
			"leave_request_id", result.ID,
			"status", result.Status,
			"audited", effects.Audit != nil,
		)
	}

	if sent != nil {
		span.AddEvent("notification recorded", trace.WithAttributes(attribute.String("notification.id", sent.ID)))
		l.notifier.Dispatch(bus.UserTopic(result.EmployeeID), bus.Message{
			Event: notification.EventNotification,
			Data:  notification.ToResponse(sent),
		})
	}

	return leave.ToLeaveRequestResponse(result), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, actor user.Actor, id string) (leave.LeaveRequestResponse, error) {
	request, err := l.requests.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	// Employees only see their own requests
	if !actor.Can(user.PermissionLeaveViewAll) && !actor.IsEmployee(request.EmployeeID) {
		return leave.LeaveRequestResponse{}, leave.ErrUnauthorized
	}

	return leave.ToLeaveRequestResponse(request), nil
}

// ListLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequest(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.requests.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToLeaveRequestResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		LeaveRequests: responses,
	}, nil
}

// ListMyLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, actor user.Actor, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if actor.EmployeeID == nil {
		return leave.ListLeaveRequestResponse{}, user.ErrEmployeeProfileRequired
	}
	filter.EmployeeID = actor.EmployeeID
	return l.ListLeaveRequest(ctx, filter)
}

// ListAudits implements leave.LeaveService.
func (l *LeaveServiceImpl) ListAudits(ctx context.Context, id string) ([]leave.AuditResponse, error) {
	if _, err := l.requests.GetByID(ctx, id); err != nil {
		return nil, err
	}

	audits, err := l.audits.ListByRequestID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave audits: %w", err)
	}

	responses := make([]leave.AuditResponse, 0, len(audits))
	for _, a := range audits {
		responses = append(responses, leave.ToAuditResponse(a))
	}
	return responses, nil
}

const leaveDateLayout = "2006-01-02"
