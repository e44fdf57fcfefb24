package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id string) error
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

// Write operations go through the enclosing transaction when one is set, so
// the credential row and the directory row commit together.
func (r *repository) Create(ctx context.Context, empl *Employee) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Create(empl).Error
	}

	const query = `
INSERT INTO employees (id, full_name, email, role, department, employee_code, position, hire_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	_, err := r.tx.ExecContext(ctx, query,
		empl.ID, empl.FullName, empl.Email, empl.Role,
		empl.Department, empl.EmployeeCode, empl.Position, empl.HireDate,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "email = ?", email).Error
	return &empl, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Save(empl).Error
	}

	const query = `
UPDATE employees
SET full_name = $2, email = $3, role = $4, department = $5,
    employee_code = $6, position = $7, hire_date = $8, updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`
	_, err := r.tx.ExecContext(ctx, query,
		empl.ID, empl.FullName, empl.Email, empl.Role,
		empl.Department, empl.EmployeeCode, empl.Position, empl.HireDate,
	)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
	}

	// Soft delete, matching the gorm DeletedAt column.
	const query = `UPDATE employees SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.tx.ExecContext(ctx, query, id)
	return err
}
