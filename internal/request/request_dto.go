package request

type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type SubmitOvertimeRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
}

// RequestResponse is the kind-tagged read model unifying both variants.
// TotalDays is set only for Leave, TotalHours only for Overtime.
type RequestResponse struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	EmployeeName   string   `json:"employee_name"`
	EmployeeCode   string   `json:"employee_code"`
	Department     string   `json:"department"`
	Category       string   `json:"category"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	TotalDays      *int     `json:"total_days,omitempty"`
	TotalHours     *float64 `json:"total_hours,omitempty"`
	Reason         string   `json:"reason"`
	Status         string   `json:"status"`
	SubmissionDate string   `json:"submission_date"`
	ApprovedBy     *string  `json:"approved_by,omitempty"`
	ApprovedAt     *string  `json:"approved_at,omitempty"`
}
