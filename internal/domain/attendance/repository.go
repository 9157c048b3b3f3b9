package attendance

import (
	"context"
	"time"
)

// BadgeEventRepository is the append-only badge ledger.
type BadgeEventRepository interface {
	// LockDay serializes writers for one employee and day until the surrounding transaction ends.
	LockDay(ctx context.Context, employeeID string, workDate time.Time) error

	Append(ctx context.Context, event BadgeEvent) (BadgeEvent, error)

	// ListByEmployeeAndDate returns the day's accepted events ordered by scan time
	ListByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) ([]BadgeEvent, error)

	List(ctx context.Context, filter BadgeEventFilter) ([]BadgeEvent, int64, error)
}

type PresenceRepository interface {
	// GetOrCreateForUpdate returns the day's record, inserting the default one if missing,
	// and locks the row for the surrounding transaction.
	GetOrCreateForUpdate(ctx context.Context, employeeID string, workDate time.Time) (PresenceRecord, error)

	Update(ctx context.Context, record PresenceRecord) error

	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (PresenceRecord, error)

	List(ctx context.Context, filter PresenceFilter) ([]PresenceRecord, int64, error)

	// MarkOnLeave flags records of employees whose approved leave covers workDate and who have not arrived.
	// Returns the number of records touched.
	MarkOnLeave(ctx context.Context, workDate time.Time) (int64, error)
}

type CredentialRepository interface {
	Create(ctx context.Context, credential BadgeCredential) (BadgeCredential, error)
	GetActiveByTokenHash(ctx context.Context, tokenHash string) (BadgeCredential, error)
	GetActiveByEmployeeID(ctx context.Context, employeeID string) (BadgeCredential, error)

	// RetireActive deactivates the employee's active credential, if any. Rows are never deleted.
	RetireActive(ctx context.Context, employeeID string, retiredAt time.Time) error
}
