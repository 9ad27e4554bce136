package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound                  ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized              ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden                 ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest                ErrorCode = "BAD_REQUEST"
	ErrCodeConflict                  ErrorCode = "CONFLICT"
	ErrCodeInternal                  ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation                ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError             ErrorCode = "DATABASE_ERROR"
	ErrCodeInvalidTransition         ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidAmount             ErrorCode = "INVALID_AMOUNT"
	ErrCodeSelfTransactionNotAllowed ErrorCode = "SELF_TRANSACTION_NOT_ALLOWED"
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

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
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
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidAmount, ErrCodeSelfTransactionNotAllowed:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

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

func IsConflict(err error) bool {
	return Is(err, ErrCodeConflict)
}

func IsInvalidTransition(err error) bool {
	return Is(err, ErrCodeInvalidTransition)
}

func IsInvalidAmount(err error) bool {
	return Is(err, ErrCodeInvalidAmount)
}

var (
	ErrTransactionNotFound    = New(ErrCodeNotFound, "сделка не найдена")
	ErrListingNotFound        = New(ErrCodeNotFound, "лот не найден")
	ErrUnauthorized           = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden              = New(ErrCodeForbidden, "недостаточно прав")
	ErrNotParticipant         = New(ErrCodeForbidden, "пользователь не является участником сделки")
	ErrSelfTransaction        = New(ErrCodeSelfTransactionNotAllowed, "нельзя купить собственный лот")
	ErrListingUnavailable     = New(ErrCodeInvalidTransition, "лот недоступен для покупки")
	ErrInvalidAmount          = New(ErrCodeInvalidAmount, "сумма должна быть конечным положительным числом")
	ErrAmountPrecision        = New(ErrCodeInvalidAmount, "сумма не может содержать больше двух знаков после запятой")
	ErrTransactionExists      = New(ErrCodeConflict, "сделка с таким id уже существует")
	ErrConcurrentModification = New(ErrCodeConflict, "статус сделки изменился параллельно, повторите запрос")
	ErrCredentialsNotSent     = New(ErrCodeNotFound, "данные доступа ещё не переданы")
)
