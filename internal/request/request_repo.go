package request

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateLeave(ctx context.Context, l *LeaveRequest) error
	CreateOvertime(ctx context.Context, o *OvertimeRequest) error

	FindLeaveByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindOvertimeByID(ctx context.Context, id string) (*OvertimeRequest, error)

	FindLeaveByEmployee(ctx context.Context, employeeCode string) ([]LeaveRequest, error)
	FindOvertimeByEmployee(ctx context.Context, employeeCode string) ([]OvertimeRequest, error)

	FindLeaveByDepartment(ctx context.Context, department, status string) ([]LeaveRequest, error)
	FindOvertimeByDepartment(ctx context.Context, department, status string) ([]OvertimeRequest, error)

	FindAllLeave(ctx context.Context) ([]LeaveRequest, error)
	FindAllOvertime(ctx context.Context) ([]OvertimeRequest, error)

	UpdateLeaveDecision(ctx context.Context, l *LeaveRequest) error
	UpdateOvertimeDecision(ctx context.Context, o *OvertimeRequest) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateLeave(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) CreateOvertime(ctx context.Context, o *OvertimeRequest) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) FindLeaveByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindOvertimeByID(ctx context.Context, id string) (*OvertimeRequest, error) {
	var o OvertimeRequest
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *repository) FindLeaveByEmployee(ctx context.Context, employeeCode string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_code = ?", employeeCode).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindOvertimeByEmployee(ctx context.Context, employeeCode string) ([]OvertimeRequest, error) {
	var reqs []OvertimeRequest
	err := r.db.WithContext(ctx).
		Where("employee_code = ?", employeeCode).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindLeaveByDepartment(ctx context.Context, department, status string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("department = ?", department).
		Where("status = ?", status).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindOvertimeByDepartment(ctx context.Context, department, status string) ([]OvertimeRequest, error) {
	var reqs []OvertimeRequest
	err := r.db.WithContext(ctx).
		Where("department = ?", department).
		Where("status = ?", status).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllLeave(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllOvertime(ctx context.Context) ([]OvertimeRequest, error) {
	var reqs []OvertimeRequest
	err := r.db.WithContext(ctx).
		Order("submission_date DESC").
		Find(&reqs).Error
	return reqs, err
}

// Decision updates run inside the service transaction so the status change
// and its outbox event commit together. The WHERE clause only touches
// status/approval columns; snapshot fields stay as submitted.
func (r *repository) UpdateLeaveDecision(ctx context.Context, l *LeaveRequest) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).
			Model(&LeaveRequest{}).
			Where("id = ?", l.ID).
			Updates(map[string]interface{}{
				"status":      l.Status,
				"approved_by": l.ApprovedBy,
				"approved_at": l.ApprovedAt,
			}).Error
	}

	const query = `
UPDATE leave_requests
SET status = $2, approved_by = $3, approved_at = $4, updated_at = NOW()
WHERE id = $1
`
	_, err := r.tx.ExecContext(ctx, query, l.ID, l.Status, l.ApprovedBy, l.ApprovedAt)
	return err
}

func (r *repository) UpdateOvertimeDecision(ctx context.Context, o *OvertimeRequest) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).
			Model(&OvertimeRequest{}).
			Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"status":      o.Status,
				"approved_by": o.ApprovedBy,
				"approved_at": o.ApprovedAt,
			}).Error
	}

	const query = `
UPDATE overtime_requests
SET status = $2, approved_by = $3, approved_at = $4, updated_at = NOW()
WHERE id = $1
`
	_, err := r.tx.ExecContext(ctx, query, o.ID, o.Status, o.ApprovedBy, o.ApprovedAt)
	return err
}
