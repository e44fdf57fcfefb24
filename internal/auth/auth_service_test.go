package auth_test

import (
	"context"
	"database/sql"
	"testing"

	"spa-portal/internal/auth"
	autherrors "spa-portal/internal/auth/errors"
	"spa-portal/internal/employee"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeCredentialRepository struct {
	getByEmailFn func(ctx context.Context, email string) (*auth.Credential, error)
}

func (f *fakeCredentialRepository) GetByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCredentialRepository) Provision(ctx context.Context, tx *sql.Tx, email, name, secret string) error {
	return nil
}

func (f *fakeCredentialRepository) Deactivate(ctx context.Context, tx *sql.Tx, email string) error {
	return nil
}

type fakeDirectory struct {
	findByEmailFn func(ctx context.Context, email string) (*employee.Employee, error)
}

func (f *fakeDirectory) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeDirectory) Create(ctx context.Context, empl *employee.Employee) error { return nil }

func (f *fakeDirectory) FindAll(ctx context.Context) ([]employee.Employee, error) { return nil, nil }

func (f *fakeDirectory) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectory) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectory) Update(ctx context.Context, empl *employee.Employee) error { return nil }

func (f *fakeDirectory) Delete(ctx context.Context, id string) error { return nil }

func activeCredential(t *testing.T, email, password string) *auth.Credential {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &auth.Credential{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Maria Garcia",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func directoryRecord(email string) *employee.Employee {
	return &employee.Employee{
		ID:           uuid.New(),
		FullName:     "Maria Garcia",
		Email:        email,
		Role:         "EMPLOYEE",
		Department:   "Massage Therapy",
		EmployeeCode: "MT001",
		Position:     "Senior Massage Therapist",
	}
}

type authServiceDeps struct {
	creds     *fakeCredentialRepository
	directory *fakeDirectory
	redisMock redismock.ClientMock
	service   auth.Service
}

func setupAuthServiceTest(t *testing.T) *authServiceDeps {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-signing-secret")

	rdb, redisMock := redismock.NewClientMock()
	creds := &fakeCredentialRepository{}
	directory := &fakeDirectory{}
	svc := auth.NewService(creds, directory, rdb)

	return &authServiceDeps{
		creds:     creds,
		directory: directory,
		redisMock: redisMock,
		service:   svc,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	const email = "maria@luocityspa.com"

	t.Run("success", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			assert.Equal(t, email, gotEmail)
			return activeCredential(t, email, "spa2024"), nil
		}
		deps.directory.findByEmailFn = func(ctx context.Context, gotEmail string) (*employee.Employee, error) {
			return directoryRecord(email), nil
		}

		access, refresh, resp, err := deps.service.Login(ctx, email, "spa2024")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)
		assert.Equal(t, email, resp.Email)
		assert.Equal(t, "EMPLOYEE", resp.Role)
		assert.Equal(t, "Massage Therapy", resp.Department)
		assert.Equal(t, "MT001", resp.EmployeeCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			return activeCredential(t, email, "spa2024"), nil
		}

		_, _, _, err := deps.service.Login(ctx, email, "wrong")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical to a wrong password", func(t *testing.T) {
		deps := setupAuthServiceTest(t)

		_, _, _, err := deps.service.Login(ctx, "nobody@luocityspa.com", "spa2024")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			cred := activeCredential(t, email, "spa2024")
			cred.IsActive = false
			return cred, nil
		}

		_, _, _, err := deps.service.Login(ctx, email, "spa2024")
		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})

	t.Run("credential without a directory record", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			return activeCredential(t, email, "spa2024"), nil
		}

		_, _, _, err := deps.service.Login(ctx, email, "spa2024")
		assert.ErrorIs(t, err, autherrors.ErrAccountUnprovisioned)
	})
}

func TestAuthService_ResolveSession(t *testing.T) {
	ctx := context.Background()
	const email = "maria@luocityspa.com"

	login := func(t *testing.T, deps *authServiceDeps) (access, refresh string) {
		t.Helper()
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			return activeCredential(t, email, "spa2024"), nil
		}
		deps.directory.findByEmailFn = func(ctx context.Context, gotEmail string) (*employee.Employee, error) {
			return directoryRecord(email), nil
		}
		access, refresh, _, err := deps.service.Login(ctx, email, "spa2024")
		assert.NoError(t, err)
		return access, refresh
	}

	t.Run("round trip", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		access, _ := login(t, deps)

		deps.redisMock.Regexp().ExpectExists(`auth:denylist:.*`).SetVal(0)

		principal, err := deps.service.ResolveSession(ctx, access)

		assert.NoError(t, err)
		assert.Equal(t, email, principal.Email)
		assert.Equal(t, "Massage Therapy", principal.Department)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("role change is picked up without a new login", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		access, _ := login(t, deps)

		deps.directory.findByEmailFn = func(ctx context.Context, gotEmail string) (*employee.Employee, error) {
			record := directoryRecord(email)
			record.Role = "HEAD"
			return record, nil
		}
		deps.redisMock.Regexp().ExpectExists(`auth:denylist:.*`).SetVal(0)

		principal, err := deps.service.ResolveSession(ctx, access)

		assert.NoError(t, err)
		assert.Equal(t, "HEAD", principal.Role)
	})

	t.Run("revoked token", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		access, _ := login(t, deps)

		deps.redisMock.Regexp().ExpectExists(`auth:denylist:.*`).SetVal(1)

		_, err := deps.service.ResolveSession(ctx, access)
		assert.ErrorIs(t, err, autherrors.ErrTokenRevoked)
	})

	t.Run("refresh token is not a session token", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		_, refresh := login(t, deps)

		_, err := deps.service.ResolveSession(ctx, refresh)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		deps := setupAuthServiceTest(t)

		_, err := deps.service.ResolveSession(ctx, "not.a.token")
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("deactivated after issue", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		access, _ := login(t, deps)

		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			cred := activeCredential(t, email, "spa2024")
			cred.IsActive = false
			return cred, nil
		}
		deps.redisMock.Regexp().ExpectExists(`auth:denylist:.*`).SetVal(0)

		_, err := deps.service.ResolveSession(ctx, access)
		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	const email = "maria@luocityspa.com"

	t.Run("access token is rejected", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		deps.creds.getByEmailFn = func(ctx context.Context, gotEmail string) (*auth.Credential, error) {
			return activeCredential(t, email, "spa2024"), nil
		}
		deps.directory.findByEmailFn = func(ctx context.Context, gotEmail string) (*employee.Employee, error) {
			return directoryRecord(email), nil
		}
		access, _, _, err := deps.service.Login(ctx, email, "spa2024")
		assert.NoError(t, err)

		_, _, _, err = deps.service.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		deps := setupAuthServiceTest(t)

		_, _, _, err := deps.service.RefreshToken(ctx, "garbage")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("unparseable tokens are skipped", func(t *testing.T) {
		deps := setupAuthServiceTest(t)

		err := deps.service.Logout(context.Background(), "", "garbage")

		assert.NoError(t, err)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}
