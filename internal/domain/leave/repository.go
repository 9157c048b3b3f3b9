package leave

import (
	"context"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// GetByIDForUpdate locks the row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)

	Update(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
}

// AuditRepository is append-only
type AuditRepository interface {
	Create(ctx context.Context, audit Audit) (Audit, error)
	ListByRequestID(ctx context.Context, leaveRequestID string) ([]Audit, error)
}
