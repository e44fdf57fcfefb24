package app

import (
	"context"
	"errors"
	"os"

	"spa-portal/internal/auth"
	"spa-portal/internal/employee"
	employeeerrors "spa-portal/internal/employee/errors"
	"spa-portal/internal/request"
	"spa-portal/internal/shared/connection"
	"spa-portal/internal/shared/counter"

	"go.uber.org/zap"
)

const supportTablesDDL = `
CREATE TABLE IF NOT EXISTS portal_counters (
	counter_type VARCHAR(50) PRIMARY KEY,
	last_value BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id VARCHAR(64),
	aggregate_type VARCHAR(50) NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type VARCHAR(100) NOT NULL,
	topic VARCHAR(200) NOT NULL,
	payload JSONB NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message VARCHAR(500),
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

var seedStaff = []employee.CreateEmployeeRequest{
	{
		FullName:     "Maria Garcia",
		Email:        "maria@luocityspa.com",
		Role:         "EMPLOYEE",
		Department:   "Massage Therapy",
		EmployeeCode: "MT001",
		Position:     "Senior Massage Therapist",
		HireDate:     "2023-01-15",
	},
	{
		FullName:     "Lisa Chen",
		Email:        "lisa@luocityspa.com",
		Role:         "HEAD",
		Department:   "Massage Therapy",
		EmployeeCode: "MTM001",
		Position:     "Massage Department Manager",
		HireDate:     "2022-05-10",
	},
	{
		FullName:     "Sarah Johnson",
		Email:        "sarah@luocityspa.com",
		Role:         "HR",
		Department:   "Human Resources",
		EmployeeCode: "HR001",
		Position:     "HR Manager",
		HireDate:     "2021-11-01",
	},
}

// RunSeeder migrates the schema and provisions the initial staff records.
// Safe to run more than once: existing records are left alone.
func RunSeeder() error {
	logger := zap.L().Named("app.seeder")
	ctx := context.Background()

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := gormDB.AutoMigrate(
		&auth.Credential{},
		&employee.Employee{},
		&request.LeaveRequest{},
		&request.OvertimeRequest{},
	); err != nil {
		return err
	}
	if err := gormDB.Exec(supportTablesDDL).Error; err != nil {
		return err
	}
	logger.Info("schema migrated")

	defaultSecret := os.Getenv("DEFAULT_STAFF_PASSWORD")
	if defaultSecret == "" {
		defaultSecret = "spa2024"
	}

	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeService := employee.NewService(sqlDB, employeeRepo, authRepo, counterRepo, nil, nil, defaultSecret)

	for _, req := range seedStaff {
		resp, err := employeeService.Create(ctx, req)
		if err != nil {
			if errors.Is(err, employeeerrors.ErrEmailAlreadyExists) ||
				errors.Is(err, employeeerrors.ErrEmployeeCodeAlreadyExists) {
				logger.Info("seed staff already present", zap.String("email", req.Email))
				continue
			}
			return err
		}
		logger.Info("seed staff created",
			zap.String("email", resp.Email),
			zap.String("employee_code", resp.EmployeeCode),
			zap.String("role", resp.Role),
		)
	}

	logger.Info("seeding complete", zap.String("default_password", defaultSecret))
	return nil
}
