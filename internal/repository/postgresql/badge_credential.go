package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type badgeCredentialRepository struct {
	db *database.DB
}

func NewBadgeCredentialRepository(db *database.DB) attendance.CredentialRepository {
	return &badgeCredentialRepository{db: db}
}

func (r *badgeCredentialRepository) Create(ctx context.Context, c attendance.BadgeCredential) (attendance.BadgeCredential, error) {
	q := GetQuerier(ctx, r.db)

	if c.ID == "" {
		c.ID = newID()
	}

	query := `
		INSERT INTO badge_credentials (id, employee_id, token_hash, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING is_active, created_at
	`
	if err := q.QueryRow(ctx, query, c.ID, c.EmployeeID, c.TokenHash).Scan(&c.IsActive, &c.CreatedAt); err != nil {
		return attendance.BadgeCredential{}, fmt.Errorf("failed to create badge credential: %w", err)
	}
	return c, nil
}

func (r *badgeCredentialRepository) GetActiveByTokenHash(ctx context.Context, tokenHash string) (attendance.BadgeCredential, error) {
	return r.getActive(ctx, "token_hash = $1", tokenHash)
}

func (r *badgeCredentialRepository) GetActiveByEmployeeID(ctx context.Context, employeeID string) (attendance.BadgeCredential, error) {
	return r.getActive(ctx, "employee_id = $1", employeeID)
}

func (r *badgeCredentialRepository) getActive(ctx context.Context, cond string, arg string) (attendance.BadgeCredential, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, token_hash, is_active, created_at, retired_at
		FROM badge_credentials
		WHERE is_active AND ` + cond

	var c attendance.BadgeCredential
	err := q.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.EmployeeID,
		&c.TokenHash,
		&c.IsActive,
		&c.CreatedAt,
		&c.RetiredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BadgeCredential{}, attendance.ErrCredentialNotFound
		}
		return attendance.BadgeCredential{}, fmt.Errorf("failed to get badge credential: %w", err)
	}
	return c, nil
}

func (r *badgeCredentialRepository) RetireActive(ctx context.Context, employeeID string, retiredAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE badge_credentials
		SET is_active = FALSE, retired_at = $2
		WHERE employee_id = $1 AND is_active
	`
	if _, err := q.Exec(ctx, query, employeeID, retiredAt); err != nil {
		return fmt.Errorf("failed to retire badge credential: %w", err)
	}
	return nil
}
