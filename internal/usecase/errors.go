package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicate          = "DUPLICATE"
	CodeInvalidState       = "INVALID_STATE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ErrorCode returns the domain code carried by err, or "" for anything else.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func NotFound(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

func Duplicate(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeDuplicate, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func AccessDenied(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeAccessDenied, Message: fmt.Sprintf(format, args...)}
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func dbError(op string, err error) error {
	return &TechnicalError{Code: "DATABASE_ERROR", Message: op, Err: err}
}
