package request

import (
	"time"

	"github.com/google/uuid"
)

// Request lifecycle. A request starts Pending and moves exactly once to
// Approved or Rejected; there is no way back and no deletion.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Request kinds, also used as the :kind route segment (lower-cased).
const (
	KindLeave    = "Leave"
	KindOvertime = "Overtime"
)

// LeaveRequest is a leave submission. EmployeeName, EmployeeCode and
// Department are copied from the submitting principal at submission time and
// are never synced with later directory edits.
type LeaveRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeName string    `gorm:"type:varchar(255);not null"`
	EmployeeCode string    `gorm:"type:varchar(20);not null;index:idx_leave_requests_employee"`
	Department   string    `gorm:"type:varchar(50);not null;index:idx_leave_requests_department_status"`

	LeaveType string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	TotalDays int       `gorm:"type:int;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status         string     `gorm:"type:varchar(20);not null;default:'Pending';index:idx_leave_requests_department_status"`
	SubmissionDate time.Time  `gorm:"not null;index:idx_leave_requests_submitted"`
	ApprovedBy     *string    `gorm:"type:varchar(255)"`
	ApprovedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OvertimeRequest is the overtime variant: date-times instead of dates,
// fractional hours instead of days. Same lifecycle and snapshot rules.
type OvertimeRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeName string    `gorm:"type:varchar(255);not null"`
	EmployeeCode string    `gorm:"type:varchar(20);not null;index:idx_overtime_requests_employee"`
	Department   string    `gorm:"type:varchar(50);not null;index:idx_overtime_requests_department_status"`

	AdjustmentType string    `gorm:"type:varchar(30);not null"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        time.Time `gorm:"not null"`
	TotalHours     float64   `gorm:"type:numeric(6,2);not null"`
	Reason         string    `gorm:"type:text;not null"`

	Status         string     `gorm:"type:varchar(20);not null;default:'Pending';index:idx_overtime_requests_department_status"`
	SubmissionDate time.Time  `gorm:"not null;index:idx_overtime_requests_submitted"`
	ApprovedBy     *string    `gorm:"type:varchar(255)"`
	ApprovedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
