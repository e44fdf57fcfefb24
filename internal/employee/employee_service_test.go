package employee_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"spa-portal/internal/employee"
	employeeerrors "spa-portal/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	createFn      func(ctx context.Context, empl *employee.Employee) error
	findAllFn     func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn    func(ctx context.Context, id string) (*employee.Employee, error)
	findByEmailFn func(ctx context.Context, email string) (*employee.Employee, error)
	updateFn      func(ctx context.Context, empl *employee.Employee) error
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) Create(ctx context.Context, empl *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, empl)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return &employee.Employee{}, nil
}

func (f *fakeEmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return &employee.Employee{}, nil
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, empl *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, empl)
	}
	return nil
}

func (f *fakeEmployeeRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeCredentialStore struct {
	provisionFn  func(ctx context.Context, tx *sql.Tx, email, name, secret string) error
	deactivateFn func(ctx context.Context, tx *sql.Tx, email string) error

	provisioned []string
	deactivated []string
}

func (f *fakeCredentialStore) Provision(ctx context.Context, tx *sql.Tx, email, name, secret string) error {
	f.provisioned = append(f.provisioned, email)
	if f.provisionFn != nil {
		return f.provisionFn(ctx, tx, email, name, secret)
	}
	return nil
}

func (f *fakeCredentialStore) Deactivate(ctx context.Context, tx *sql.Tx, email string) error {
	f.deactivated = append(f.deactivated, email)
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, tx, email)
	}
	return nil
}

type fakeCounterRepository struct {
	nextFn func(ctx context.Context, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	if f.nextFn != nil {
		return f.nextFn(ctx, counterType)
	}
	return 1, nil
}

type employeeServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *fakeEmployeeRepository
	creds   *fakeCredentialStore
	counter *fakeCounterRepository
	service employee.Service
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeEmployeeRepository{}
	creds := &fakeCredentialStore{}
	counterRepo := &fakeCounterRepository{}
	svc := employee.NewService(db, repo, creds, counterRepo, nil, nil, "spa2024")

	return &employeeServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    repo,
		creds:   creds,
		counter: counterRepo,
		service: svc,
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FullName:   "Maria Garcia",
		Email:      "maria@luocityspa.com",
		Role:       "EMPLOYEE",
		Department: "Massage Therapy",
		Position:   "Senior Massage Therapist",
		HireDate:   "2023-01-15",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions credential and directory record together", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.creds.provisionFn = func(ctx context.Context, tx *sql.Tx, email, name, secret string) error {
			assert.NotNil(t, tx)
			assert.Equal(t, "maria@luocityspa.com", email)
			assert.Equal(t, "spa2024", secret)
			return nil
		}
		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			assert.Equal(t, "EMP0001", empl.EmployeeCode)
			assert.Equal(t, "Massage Therapy", empl.Department)
			return nil
		}

		resp, err := deps.service.Create(ctx, validCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, "EMP0001", resp.EmployeeCode)
		assert.Equal(t, "2023-01-15", resp.HireDate)
		assert.Equal(t, []string{"maria@luocityspa.com"}, deps.creds.provisioned)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("explicit employee code is kept", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.counter.nextFn = func(ctx context.Context, counterType string) (int64, error) {
			t.Fatal("counter must not run when a code is provided")
			return 0, nil
		}

		req := validCreateRequest()
		req.EmployeeCode = "MT001"

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "MT001", resp.EmployeeCode)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid role", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Role = "MANAGER"

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidRole)
		assert.Empty(t, deps.creds.provisioned)
	})

	t.Run("unknown department", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Department = "Finance"

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDepartment)
	})

	t.Run("duplicate email surfaces as conflict", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"}
		}

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("credential failure rolls the directory write back", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.creds.provisionFn = func(ctx context.Context, tx *sql.Tx, email, name, secret string) error {
			return assert.AnError
		}
		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			t.Fatal("directory write must not happen when provisioning fails")
			return nil
		}

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("deactivates credential in the same transaction", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, gotID string) (*employee.Employee, error) {
			assert.Equal(t, id, gotID)
			return &employee.Employee{
				ID:    uuid.MustParse(id),
				Email: "maria@luocityspa.com",
			}, nil
		}

		err := deps.service.Delete(ctx, id)

		assert.NoError(t, err)
		assert.Equal(t, []string{"maria@luocityspa.com"}, deps.creds.deactivated)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, gotID string) (*employee.Employee, error) {
			return nil, gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.Empty(t, deps.creds.deactivated)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Delete(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("role change takes effect in the directory", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, gotID string) (*employee.Employee, error) {
			return &employee.Employee{
				ID:           uuid.MustParse(id),
				FullName:     "Maria Garcia",
				Email:        "maria@luocityspa.com",
				Role:         "EMPLOYEE",
				Department:   "Massage Therapy",
				EmployeeCode: "MT001",
				HireDate:     time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, empl *employee.Employee) error {
			assert.Equal(t, "HEAD", empl.Role)
			return nil
		}

		resp, err := deps.service.Update(ctx, id, employee.UpdateEmployeeRequest{
			FullName:     "Maria Garcia",
			Email:        "maria@luocityspa.com",
			Role:         "HEAD",
			Department:   "Massage Therapy",
			EmployeeCode: "MT001",
			HireDate:     "2023-01-15",
		})

		assert.NoError(t, err)
		assert.Equal(t, "HEAD", resp.Role)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid hire date", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Update(ctx, id, employee.UpdateEmployeeRequest{
			FullName:     "Maria Garcia",
			Email:        "maria@luocityspa.com",
			Role:         "HEAD",
			Department:   "Massage Therapy",
			EmployeeCode: "MT001",
			HireDate:     "15-01-2023",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
	})
}
