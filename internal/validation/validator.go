// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package validation provides struct validation using go-playground/validator v10.
// It exposes a thread-safe singleton validator and translates field errors
// to the API's VALIDATION_FAILED format.
//
// Example usage:
//
//	type NearbyRequest struct {
//	    Latitude  float64 `validate:"latitude"`
//	    Longitude float64 `validate:"longitude"`
//	    Radius    int     `validate:"min=1,max=1000000"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    rw.ValidationError(err.Error(), err.Fields())
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Error returns a human-readable error message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError is a collection of field validation failures.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.message
	}
	return strings.Join(messages, "; ")
}

// Fields returns a details payload suitable for the API error envelope.
func (ve *RequestValidationError) Fields() []map[string]interface{} {
	fields := make([]map[string]interface{}, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
	}
	return fields
}

// GetValidator returns the singleton validator instance. Thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success or *RequestValidationError on failure.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"datetime":    "%s must be a valid date/time",
	"latitude":    "%s must be a valid latitude (-90 to 90)",
	"longitude":   "%s must be a valid longitude (-180 to 180)",
	"hexadecimal": "%s must be hexadecimal",
}

// errorMessageWithParam maps validation tags to templates including the param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"len":   "%s must have length %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed validation on tag '%s'", field, tag)
}
