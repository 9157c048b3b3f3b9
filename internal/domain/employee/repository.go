package employee

import "context"

// EmployeeRepository exposes the lookup the scan flow needs.
// Employee records are maintained by the HR directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}
