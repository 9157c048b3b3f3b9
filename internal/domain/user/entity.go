package user

type Role string

const (
	RoleOwner    Role = "owner"    // Full access
	RoleManager  Role = "manager"  // Can decide leave requests and read all presence
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// Actor is the authenticated caller of a service operation, taken from the access token claims.
type Actor struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IsEmployee reports whether the actor is linked to employeeID
func (a Actor) IsEmployee(employeeID string) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}

func (a Actor) Can(permission Permission) bool {
	return HasPermission(a.Role, permission)
}
