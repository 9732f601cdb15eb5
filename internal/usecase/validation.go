package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validationFailed folds field errors into one VALIDATION_ERROR, or nil.
func validationFailed(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}

var nonDigits = regexp.MustCompile(`\D`)

func requireText(errs []ValidationError, field, value string, min, max int) []ValidationError {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		errs = append(errs, ValidationError{field, "is required"})
	case len(v) < min:
		errs = append(errs, ValidationError{field, fmt.Sprintf("must have at least %d characters", min)})
	case max > 0 && len(v) > max:
		errs = append(errs, ValidationError{field, fmt.Sprintf("must not exceed %d characters", max)})
	}
	return errs
}

func requireEmail(errs []ValidationError, field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errs, ValidationError{field, "is required"})
	}
	if !isValidEmail(value) {
		return append(errs, ValidationError{field, "is invalid"})
	}
	return errs
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 9 && len(cleaned) <= 15
}

func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateRange validates that from is not after to when both are present.
func dateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return Validation("date_from must not be after date_to")
	}
	return nil
}
