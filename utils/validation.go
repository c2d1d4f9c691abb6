package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is the singleton validator instance
var validate = validator.New()

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
		switch err.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s é obrigatório", field)
		case "min":
			fields[field] = fmt.Sprintf("%s deve ter no mínimo %s caracteres", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s deve ter no máximo %s caracteres", field, err.Param())
		case "url":
			fields[field] = fmt.Sprintf("%s deve ser uma URL válida", field)
		default:
			fields[field] = fmt.Sprintf("%s falhou na validação '%s'", field, err.Tag())
		}
	}

	return &ValidationError{
		Message: "Dados inválidos",
		Fields:  fields,
	}
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identificador inválido: %s", s)
	}
	return id, nil
}
