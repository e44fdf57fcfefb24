package autherrors

import (
	"net/http"

	"spa-portal/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Email or password is incorrect",
		http.StatusUnauthorized,
	)
	ErrAccountDisabled = apperror.New(
		apperror.CodeForbidden,
		"This account has been deactivated",
		http.StatusForbidden,
	)
	// ErrAccountUnprovisioned covers a credential that signs in fine but has
	// no matching row in the staff directory, so no role or department can
	// be resolved for it.
	ErrAccountUnprovisioned = apperror.New(
		apperror.CodeForbidden,
		"Your account is not registered in the staff directory. Contact HR.",
		http.StatusForbidden,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"A credential with this email already exists",
		http.StatusConflict,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid or expired token",
		http.StatusUnauthorized,
	)
	ErrInvalidRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid or expired refresh token",
		http.StatusUnauthorized,
	)
	ErrTokenRevoked = apperror.New(
		apperror.CodeUnauthorized,
		"Session has been revoked",
		http.StatusUnauthorized,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Could not issue session tokens",
		http.StatusInternalServerError,
	)
)
