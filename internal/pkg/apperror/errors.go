package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"

	// Закрытая таксономия жизненного цикла назначений.
	ErrCodeInvalidTransition          ErrorCode = "INVALID_TRANSITION"
	ErrCodeTargetNotOpen              ErrorCode = "TARGET_NOT_OPEN"
	ErrCodeDuplicateApplication       ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeAlreadyProcessed           ErrorCode = "ALREADY_PROCESSED"
	ErrCodeConcurrentModification     ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodePartialExportInconsistency ErrorCode = "PARTIAL_EXPORT_INCONSISTENCY"
	ErrCodeUnparseableInput           ErrorCode = "UNPARSEABLE_INPUT"
	ErrCodeNotComputable              ErrorCode = "NOT_COMPUTABLE"
	ErrCodeEmptySchedule              ErrorCode = "EMPTY_SCHEDULE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с сентинелами пакета.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && (other.Message == "" || e.Message == other.Message)
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnparseableInput, ErrCodeEmptySchedule, ErrCodeNotComputable:
		return http.StatusUnprocessableEntity
	case ErrCodeConflict, ErrCodeInvalidTransition, ErrCodeTargetNotOpen,
		ErrCodeDuplicateApplication, ErrCodeAlreadyProcessed, ErrCodeConcurrentModification:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для посторонних ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is проверяет, что в цепочке есть AppError с указанным кодом.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return Is(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return Is(err, ErrCodeValidation)
}

// IsUserFacing сообщает, что ошибка разрешается на границе с пользователем и не ретраится.
func IsUserFacing(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidTransition, ErrCodeTargetNotOpen, ErrCodeDuplicateApplication,
		ErrCodeAlreadyProcessed, ErrCodeUnparseableInput, ErrCodeValidation, ErrCodeForbidden,
		ErrCodeNotFound, ErrCodeEmptySchedule, ErrCodeNotComputable:
		return true
	}
	return false
}

// IsRetryable сообщает, что операцию можно повторить один раз со свежим состоянием.
func IsRetryable(err error) bool {
	return Is(err, ErrCodeConcurrentModification)
}

var (
	ErrShiftNotFound       = New(ErrCodeNotFound, "смена не найдена")
	ErrPostingNotFound     = New(ErrCodeNotFound, "вакансия не найдена")
	ErrApplicationNotFound = New(ErrCodeNotFound, "отклик не найден")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrConcurrent          = New(ErrCodeConcurrentModification, "состояние изменилось параллельно, повторите запрос")
	ErrAlreadyExported     = New(ErrCodeAlreadyProcessed, "смена уже выгружена в зарплату")
	ErrLedgerMismatch      = New(ErrCodePartialExportInconsistency, "запись реестра есть, а смена не отмечена как выгруженная")
)
