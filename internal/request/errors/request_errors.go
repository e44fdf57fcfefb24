package requesterrors

import (
	"net/http"

	"spa-portal/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateTimeFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date-time format, expected RFC 3339",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not precede start date",
		http.StatusBadRequest,
	)
	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"end time must come after start time",
		http.StatusBadRequest,
	)
	ErrUnknownKind = apperror.New(
		apperror.CodeInvalidInput,
		"request kind must be leave or overtime",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"request has already been decided",
		http.StatusConflict,
	)
	ErrDepartmentMismatch = apperror.New(
		apperror.CodeForbidden,
		"request belongs to another department",
		http.StatusForbidden,
	)
	ErrMissingEmployeeCode = apperror.New(
		apperror.CodeInvalidInput,
		"submitting account has no employee code",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"status filter must be Pending, Approved or Rejected",
		http.StatusBadRequest,
	)
)
