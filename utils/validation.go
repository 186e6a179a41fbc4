package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate

	// orcidIDRegex matches the 16-character ORCID iD form, e.g.
	// 0000-0001-2345-6789. The final character may be "X" (checksum 10).
	orcidIDRegex = regexp.MustCompile(`^(\d{4}-){3}\d{3}[\dX]$`)
)

func init() {
	validate = validator.New()
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		tag := err.Tag()

		switch tag {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "url":
			fields[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "startswith":
			fields[field] = fmt.Sprintf("%s must start with %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, tag)
		}
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// ValidateORCIDiD validates an ORCID iD: format plus the ISO 7064 11-2
// check digit that terminates every ORCID iD.
func ValidateORCIDiD(id string) error {
	if !orcidIDRegex.MatchString(id) {
		return fmt.Errorf("invalid ORCID iD format: %s", id)
	}
	if checksumChar(id) != id[len(id)-1] {
		return fmt.Errorf("invalid ORCID iD checksum: %s", id)
	}
	return nil
}

// checksumChar computes the ISO 7064 11-2 check character over the 15
// base digits of an already format-checked ORCID iD.
func checksumChar(id string) byte {
	total := 0
	count := 0
	for i := 0; i < len(id) && count < 15; i++ {
		c := id[i]
		if c < '0' || c > '9' {
			continue
		}
		total = (total + int(c-'0')) * 2
		count++
	}
	result := (12 - total%11) % 11
	if result == 10 {
		return 'X'
	}
	return byte('0' + result)
}
