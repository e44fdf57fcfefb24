package employee

type CreateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Role         string `json:"role" binding:"required,oneof=EMPLOYEE HEAD HR"`
	Department   string `json:"department" binding:"required"`
	EmployeeCode string `json:"employee_code"`
	Position     string `json:"position"`
	HireDate     string `json:"hire_date"`
}

type UpdateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Role         string `json:"role" binding:"required,oneof=EMPLOYEE HEAD HR"`
	Department   string `json:"department" binding:"required"`
	EmployeeCode string `json:"employee_code" binding:"required"`
	Position     string `json:"position"`
	HireDate     string `json:"hire_date"`
}

type EmployeeResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	EmployeeCode string `json:"employee_code"`
	Position     string `json:"position"`
	HireDate     string `json:"hire_date"`
}
