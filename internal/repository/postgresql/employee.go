package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, user_id, employee_code, full_name, status, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var (
		emp    employee.Employee
		status string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID,
		&emp.UserID,
		&emp.EmployeeCode,
		&emp.FullName,
		&status,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	emp.Status = employee.Status(status)

	return emp, nil
}
