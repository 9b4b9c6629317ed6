package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Mesmo formato aceito pelos formulários: local@dominio.tld, sem espaços.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateDistributeByIDInput(input DistributeByIDInput) []ValidationError {
	var errs []ValidationError
	errs = requireField(errs, "name", input.Name)
	errs = requireField(errs, "email", input.Email)
	errs = requireField(errs, "phone", input.Phone)
	return validateEmail(errs, input.Email)
}

func ValidateDistributeBySourceInput(input DistributeBySourceInput) []ValidationError {
	var errs []ValidationError
	errs = requireField(errs, "name", input.Name)
	errs = requireField(errs, "email", input.Email)
	errs = requireField(errs, "mobile_number", input.MobileNumber)
	errs = requireField(errs, "source_url", input.SourceURL)
	return validateEmail(errs, input.Email)
}

func requireField(errs []ValidationError, field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errs, ValidationError{field, "is required"})
	}
	return errs
}

func validateEmail(errs []ValidationError, email string) []ValidationError {
	email = strings.TrimSpace(email)
	if email != "" && !IsValidEmail(email) {
		return append(errs, ValidationError{"email", "is invalid"})
	}
	return errs
}

func validationFailure(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  errs,
	}
}
