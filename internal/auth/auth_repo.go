package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	autherrors "spa-portal/internal/auth/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

// Repository stores credentials. Provision and Deactivate take the caller's
// transaction so directory writes and credential writes commit together,
// which is how the employee service uses them.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	Provision(ctx context.Context, tx *sql.Tx, email, name, secret string) error
	Deactivate(ctx context.Context, tx *sql.Tx, email string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	var cred Credential
	err := r.db.WithContext(ctx).First(&cred, "email = ?", email).Error
	return &cred, err
}

func (r *repository) Provision(ctx context.Context, tx *sql.Tx, email, name, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	query := `
INSERT INTO credentials (id, email, name, password_hash, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
`
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, uuid.NewString(), email, name, string(hash))
	} else {
		err = r.db.WithContext(ctx).Exec(
			"INSERT INTO credentials (id, email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, TRUE, NOW(), NOW())",
			uuid.NewString(), email, name, string(hash),
		).Error
	}
	return mapCredentialError(err)
}

func (r *repository) Deactivate(ctx context.Context, tx *sql.Tx, email string) error {
	query := `UPDATE credentials SET is_active = FALSE, updated_at = NOW() WHERE email = $1`
	if tx != nil {
		_, err := tx.ExecContext(ctx, query, email)
		return err
	}
	return r.db.WithContext(ctx).Exec(
		"UPDATE credentials SET is_active = FALSE, updated_at = NOW() WHERE email = ?",
		email,
	).Error
}

func mapCredentialError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_credentials_email" {
			return autherrors.ErrEmailAlreadyRegistered
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_credentials_email") {
		return autherrors.ErrEmailAlreadyRegistered
	}

	return err
}
