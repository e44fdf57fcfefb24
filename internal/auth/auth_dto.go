package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SessionResponse mirrors the resolved principal, not the credential row:
// role and department always come from the current directory record.
type SessionResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	EmployeeCode string `json:"employee_code"`
	Position     string `json:"position,omitempty"`
}
