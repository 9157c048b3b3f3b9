package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
)

type leaveAuditRepository struct {
	db *database.DB
}

func NewLeaveAuditRepository(db *database.DB) leave.AuditRepository {
	return &leaveAuditRepository{db: db}
}

func (r *leaveAuditRepository) Create(ctx context.Context, audit leave.Audit) (leave.Audit, error) {
	q := GetQuerier(ctx, r.db)

	if audit.ID == "" {
		audit.ID = newID()
	}

	query := `
		INSERT INTO leave_audits (id, leave_request_id, admin_id, action, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query,
		audit.ID,
		audit.LeaveRequestID,
		audit.AdminID,
		string(audit.Action),
		audit.Reason,
	).Scan(&audit.CreatedAt)
	if err != nil {
		return leave.Audit{}, fmt.Errorf("failed to create leave audit: %w", err)
	}

	return audit, nil
}

func (r *leaveAuditRepository) ListByRequestID(ctx context.Context, leaveRequestID string) ([]leave.Audit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_request_id, admin_id, action, reason, created_at
		FROM leave_audits
		WHERE leave_request_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := q.Query(ctx, query, leaveRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave audits: %w", err)
	}
	defer rows.Close()

	var audits []leave.Audit
	for rows.Next() {
		var (
			a      leave.Audit
			action string
		)
		if err := rows.Scan(&a.ID, &a.LeaveRequestID, &a.AdminID, &action, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave audit: %w", err)
		}
		a.Action = leave.AuditAction(action)
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave audits: %w", err)
	}

	return audits, nil
}
