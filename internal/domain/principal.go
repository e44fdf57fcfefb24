package domain

// Staff roles. Exactly three; there is no role administration surface.
const (
	RoleEmployee = "EMPLOYEE"
	RoleHead     = "HEAD"
	RoleHR       = "HR"
)

// Departments is the fixed set a spa employee can belong to.
var Departments = []string{
	"Massage Therapy",
	"Skin Care",
	"Reception",
	"Spa Management",
	"Human Resources",
	"Maintenance",
	"Training",
}

func IsValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleHead, RoleHR:
		return true
	}
	return false
}

func IsValidDepartment(department string) bool {
	for _, d := range Departments {
		if d == department {
			return true
		}
	}
	return false
}

// Principal is the resolved session identity every scoped operation receives.
// It is re-resolved from the employee directory on each request, never cached
// across requests, so directory edits take effect immediately.
type Principal struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	EmployeeCode string `json:"employee_code"`
	Position     string `json:"position"`
}

// EnforceRequest is the tuple the RBAC layer evaluates.
type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
