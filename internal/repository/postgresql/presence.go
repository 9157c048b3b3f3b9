package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type presenceRepository struct {
	db *database.DB
}

func NewPresenceRepository(db *database.DB) attendance.PresenceRepository {
	return &presenceRepository{db: db}
}

const presenceColumns = `
	p.id, p.employee_id, p.work_date, p.status, p.arrival_time, p.departure_time,
	p.worked_minutes, p.pause_count, p.pause_minutes, p.created_at, p.updated_at`

func scanPresence(row pgx.Row, extra ...interface{}) (attendance.PresenceRecord, error) {
	var (
		p      attendance.PresenceRecord
		status string
	)
	dest := []interface{}{
		&p.ID,
		&p.EmployeeID,
		&p.WorkDate,
		&status,
		&p.ArrivalTime,
		&p.DepartureTime,
		&p.WorkedMinutes,
		&p.PauseCount,
		&p.PauseMinutes,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.PresenceRecord{}, err
	}
	p.Status = attendance.PresenceStatus(status)
	return p, nil
}

func (r *presenceRepository) GetOrCreateForUpdate(ctx context.Context, employeeID string, workDate time.Time) (attendance.PresenceRecord, error) {
	q := GetQuerier(ctx, r.db)
	day := workDate.Format(dateLayout)

	insert := `
		INSERT INTO presence_records (id, employee_id, work_date, status)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT (employee_id, work_date) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, newID(), employeeID, day, string(attendance.StatusAbsent)); err != nil {
		return attendance.PresenceRecord{}, fmt.Errorf("failed to create presence record: %w", err)
	}

	query := `SELECT ` + presenceColumns + `
		FROM presence_records p
		WHERE p.employee_id = $1 AND p.work_date = $2::date
		FOR UPDATE
	`
	p, err := scanPresence(q.QueryRow(ctx, query, employeeID, day))
	if err != nil {
		return attendance.PresenceRecord{}, fmt.Errorf("failed to lock presence record: %w", err)
	}
	return p, nil
}

func (r *presenceRepository) Update(ctx context.Context, p attendance.PresenceRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE presence_records
		SET status = $2,
			arrival_time = $3,
			departure_time = $4,
			worked_minutes = $5,
			pause_count = $6,
			pause_minutes = $7,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		p.ID,
		string(p.Status),
		p.ArrivalTime,
		p.DepartureTime,
		p.WorkedMinutes,
		p.PauseCount,
		p.PauseMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to update presence record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrPresenceNotFound
	}
	return nil
}

func (r *presenceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (attendance.PresenceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + presenceColumns + `
		FROM presence_records p
		WHERE p.employee_id = $1 AND p.work_date = $2::date
	`
	p, err := scanPresence(q.QueryRow(ctx, query, employeeID, workDate.Format(dateLayout)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.PresenceRecord{}, attendance.ErrPresenceNotFound
		}
		return attendance.PresenceRecord{}, fmt.Errorf("failed to get presence record: %w", err)
	}
	return p, nil
}

func (r *presenceRepository) List(ctx context.Context, filter attendance.PresenceFilter) ([]attendance.PresenceRecord, int64, error) {
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
		add("p.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Date != nil && *filter.Date != "" {
		add("p.work_date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		add("p.work_date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		add("p.work_date <= $%d::date", *filter.EndDate)
	}
	if filter.Status != nil {
		add("p.status = $%d", *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM presence_records p " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count presence records: %w", err)
	}

	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM presence_records p
		JOIN employees e ON e.id = p.employee_id
		%s
		ORDER BY p.work_date %s, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, presenceColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list presence records: %w", err)
	}
	defer rows.Close()

	var records []attendance.PresenceRecord
	for rows.Next() {
		var name string
		p, err := scanPresence(rows, &name)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan presence record: %w", err)
		}
		p.EmployeeName = &name
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate presence records: %w", err)
	}

	return records, total, nil
}

func (r *presenceRepository) MarkOnLeave(ctx context.Context, workDate time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO presence_records (id, employee_id, work_date, status)
		SELECT gen_random_uuid(), covered.employee_id, $1::date, $2
		FROM (
			SELECT DISTINCT lr.employee_id
			FROM leave_requests lr
			WHERE lr.status = $3 AND $1::date BETWEEN lr.start_date AND lr.end_date
		) covered
		ON CONFLICT (employee_id, work_date) DO UPDATE
		SET status = EXCLUDED.status, updated_at = NOW()
		WHERE presence_records.arrival_time IS NULL
			AND presence_records.status <> EXCLUDED.status
	`
	tag, err := q.Exec(ctx, query, workDate.Format(dateLayout), string(attendance.StatusOnLeave), "approved")
	if err != nil {
		return 0, fmt.Errorf("failed to mark leave presence: %w", err)
	}
	return tag.RowsAffected(), nil
}
