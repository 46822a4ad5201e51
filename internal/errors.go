package internal

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeDuplicate    ErrorType = "DUPLICATE_KEY"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidScore     ErrorCode = "INVALID_SCORE"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"

	ErrCodeDuplicateEmail      ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateDepartment ErrorCode = "DUPLICATE_DEPARTMENT"
	ErrCodeDuplicateEvaluation ErrorCode = "DUPLICATE_EVALUATION"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"
	ErrCodeUserDataNotFound   ErrorCode = "USER_DATA_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
)

// AppError is the one failure type repositories and services return; route
// handlers translate it to a status code and the JSON envelope. The Cause is
// logged server-side and never serialized.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewDuplicateKeyError maps unique-index violations. The original API
// contract reports duplicates as 400, not 409.
func NewDuplicateKeyError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicate,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Not authorized to access this route", ErrCodeInvalidToken)

	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrEvaluationNotFound = NewNotFoundError("Evaluation not found", ErrCodeEvaluationNotFound)
	ErrUserDataNotFound   = NewNotFoundError("User data not found", ErrCodeUserDataNotFound)

	ErrDuplicateEmail      = NewDuplicateKeyError("User already exists", ErrCodeDuplicateEmail)
	ErrDuplicateDepartment = NewDuplicateKeyError("Department with this name already exists", ErrCodeDuplicateDepartment)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsDuplicateKey reports whether err is a unique-constraint violation as
// translated by GORM (TranslateError must be enabled on the connection).
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
