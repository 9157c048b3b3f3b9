package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
)

// AttendanceService defines business logic for badge scans and presence queries
type AttendanceService interface {
	// Scan validates a badge event against the day's ledger, appends it and updates the presence record
	Scan(ctx context.Context, actor user.Actor, req ScanRequest) (ScanResponse, error)

	ListEvents(ctx context.Context, filter BadgeEventFilter) (ListBadgeEventResponse, error)
	ListPresence(ctx context.Context, filter PresenceFilter) (ListPresenceResponse, error)

	GetActiveCredential(ctx context.Context, employeeID string) (CredentialResponse, error)

	// RegenerateCredential retires the active credential and issues a new token
	RegenerateCredential(ctx context.Context, employeeID string) (IssuedCredentialResponse, error)

	// SyncLeavePresence marks the day's presence as on_leave for approved leaves without an arrival
	SyncLeavePresence(ctx context.Context, workDate time.Time) (int64, error)
}
