package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, actor user.Actor, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)

	// Transition moves a request to req.Status. The status change, its audit entry and its
	// notification commit together. The real-time push happens afterwards and never fails the call.
	Transition(ctx context.Context, req TransitionRequest, actingAdminID *string) (LeaveRequestResponse, error)

	GetLeaveRequest(ctx context.Context, actor user.Actor, id string) (LeaveRequestResponse, error)
	ListLeaveRequest(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, actor user.Actor, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListAudits(ctx context.Context, id string) ([]AuditResponse, error)
}
