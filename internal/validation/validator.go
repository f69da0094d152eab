// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package validation provides struct validation using
// go-playground/validator v10: a thread-safe singleton instance with a
// custom validator for coordinate system codes, and error translation
// into the VALIDATION_ERROR shape.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/coord"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the singleton validator, registering custom
// validators on first use.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// coordsystem: value must be one of the seven supported codes.
		//nolint:errcheck // registration only fails for empty tag names
		validate.RegisterValidation("coordsystem", func(fl validator.FieldLevel) bool {
			_, ok := coord.Lookup(coord.Code(fl.Field().String()))
			return ok
		})
	})
	return validate
}

// FieldError describes a single failed field in client-friendly form.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct validates a struct and returns a VALIDATION_ERROR with
// per-field details on failure, nil on success.
func ValidateStruct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apierror.Wrap(err, apierror.CodeInternal, "validation target is not a struct")
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.Wrap(err, apierror.CodeValidation, "request failed validation")
	}

	details := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, FieldError{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: messageFor(fe),
		})
	}

	return apierror.New(apierror.CodeValidation, "request failed validation").
		WithDetails(details)
}

// messageFor renders a human-readable message for one field failure.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "coordsystem":
		return fmt.Sprintf("must be one of %v", coord.SupportedSystems())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
