package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const dateLayout = "2006-01-02"

// newID returns a time-ordered UUIDv7
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type badgeEventRepository struct {
	db *database.DB
}

func NewBadgeEventRepository(db *database.DB) attendance.BadgeEventRepository {
	return &badgeEventRepository{db: db}
}

// LockDay takes a transaction-scoped advisory lock on (employee, day).
// Outside a transaction the lock would be released immediately, so callers must hold one.
func (r *badgeEventRepository) LockDay(ctx context.Context, employeeID string, workDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	key := employeeID + ":" + workDate.Format(dateLayout)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("failed to lock badge day: %w", err)
	}
	return nil
}

func (r *badgeEventRepository) Append(ctx context.Context, event attendance.BadgeEvent) (attendance.BadgeEvent, error) {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		event.ID = newID()
	}

	query := `
		INSERT INTO badge_events (id, employee_id, work_date, event_type, scanned_at, latitude, longitude, device_tag)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		event.WorkDate.Format(dateLayout),
		string(event.Type),
		event.ScannedAt,
		event.Latitude,
		event.Longitude,
		event.DeviceTag,
	).Scan(&event.CreatedAt)
	if err != nil {
		return attendance.BadgeEvent{}, fmt.Errorf("failed to append badge event: %w", err)
	}

	return event, nil
}

func (r *badgeEventRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) ([]attendance.BadgeEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_date, event_type, scanned_at, latitude, longitude, device_tag, created_at
		FROM badge_events
		WHERE employee_id = $1 AND work_date = $2::date
		ORDER BY scanned_at ASC, id ASC
	`
	rows, err := q.Query(ctx, query, employeeID, workDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list badge events: %w", err)
	}
	defer rows.Close()

	return scanBadgeEvents(rows)
}

func (r *badgeEventRepository) List(ctx context.Context, filter attendance.BadgeEventFilter) ([]attendance.BadgeEvent, int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.EmployeeID != nil {
		add("employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Date != nil && *filter.Date != "" {
		add("work_date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		add("work_date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		add("work_date <= $%d::date", *filter.EndDate)
	}
	if filter.EventType != nil {
		add("event_type = $%d", *filter.EventType)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM badge_events "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count badge events: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT id, employee_id, work_date, event_type, scanned_at, latitude, longitude, device_tag, created_at
		FROM badge_events
		%s
		ORDER BY scanned_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list badge events: %w", err)
	}
	defer rows.Close()

	events, err := scanBadgeEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func scanBadgeEvents(rows pgx.Rows) ([]attendance.BadgeEvent, error) {
	var events []attendance.BadgeEvent
	for rows.Next() {
		var (
			e         attendance.BadgeEvent
			eventType string
		)
		if err := rows.Scan(
			&e.ID,
			&e.EmployeeID,
			&e.WorkDate,
			&eventType,
			&e.ScannedAt,
			&e.Latitude,
			&e.Longitude,
			&e.DeviceTag,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan badge event: %w", err)
		}
		e.Type = attendance.EventType(eventType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badge events: %w", err)
	}
	return events, nil
}
