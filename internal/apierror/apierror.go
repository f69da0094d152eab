// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package apierror provides the closed error taxonomy used across the
// gateway. Every failure that reaches a client is expressed as one of the
// codes below; internal boundaries return *Error values and the handler
// layer converts them into response envelopes.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code drawn from the closed taxonomy.
type Code string

// The closed error taxonomy. Codes, default HTTP statuses and retryability
// are fixed; new failure modes map onto an existing code.
const (
	CodeAuth              Code = "AUTH_ERROR"
	CodeAPIKey            Code = "API_KEY_ERROR"
	CodeAuthorization     Code = "AUTHORIZATION_ERROR"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeSchemaValidation  Code = "SCHEMA_VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeExternalAPI       Code = "EXTERNAL_API_ERROR"
	CodeTimeout           Code = "TIMEOUT_ERROR"
	CodeServiceUnavail    Code = "SERVICE_UNAVAILABLE"
	CodeInternal          Code = "INTERNAL_SERVER_ERROR"
	CodeCoordinate        Code = "COORDINATE_ERROR"
	CodeCache             Code = "CACHE_ERROR"
	CodeConfiguration     Code = "CONFIGURATION_ERROR"
)

// codeMeta pairs a code with its default HTTP status and retry flag.
type codeMeta struct {
	status    int
	retryable bool
}

var codeTable = map[Code]codeMeta{
	CodeAuth:              {http.StatusUnauthorized, false},
	CodeAPIKey:            {http.StatusUnauthorized, false},
	CodeAuthorization:     {http.StatusForbidden, false},
	CodeValidation:        {http.StatusBadRequest, false},
	CodeSchemaValidation:  {http.StatusBadRequest, false},
	CodeNotFound:          {http.StatusNotFound, false},
	CodeRateLimitExceeded: {http.StatusTooManyRequests, true},
	CodeExternalAPI:       {http.StatusBadGateway, true},
	CodeTimeout:           {http.StatusGatewayTimeout, true},
	CodeServiceUnavail:    {http.StatusServiceUnavailable, true},
	CodeInternal:          {http.StatusInternalServerError, false},
	CodeCoordinate:        {http.StatusBadRequest, false},
	CodeCache:             {http.StatusInternalServerError, false},
	CodeConfiguration:     {http.StatusInternalServerError, false},
}

// Error is a classified gateway error.
type Error struct {
	// Code is the taxonomy code.
	Code Code `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details contains additional structured context (optional).
	Details any `json:"details,omitempty"`

	// Retryable indicates whether the caller may retry the operation.
	Retryable bool `json:"retryable,omitempty"`

	// Status is the HTTP status for this error. Not serialized; the
	// handler layer writes it on the response line.
	Status int `json:"-"`

	// Err is the wrapped internal error. Never exposed to clients.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by taxonomy code so that
// errors.Is(err, apierror.New(CodeTimeout, "")) holds for any timeout.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetails attaches structured details and returns the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithError wraps an internal error and returns the error.
func (e *Error) WithError(err error) *Error {
	e.Err = err
	return e
}

// New creates a classified error for the given code. Status and
// retryability come from the taxonomy table; unknown codes are treated
// as internal errors.
func New(code Code, message string) *Error {
	meta, ok := codeTable[code]
	if !ok {
		meta = codeTable[CodeInternal]
		code = CodeInternal
	}
	return &Error{
		Code:      code,
		Message:   message,
		Status:    meta.status,
		Retryable: meta.retryable,
	}
}

// Newf creates a classified error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a classified error wrapping an internal cause.
func Wrap(err error, code Code, message string) *Error {
	return New(code, message).WithError(err)
}

// FromError normalizes any error into the taxonomy. Already-classified
// errors pass through unchanged; everything else becomes
// INTERNAL_SERVER_ERROR with the cause preserved.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Wrap(err, CodeInternal, "an unexpected error occurred")
}

// IsRetryable reports whether the error's classification permits a retry.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

// StatusFor returns the HTTP status for an arbitrary error.
func StatusFor(err error) int {
	return FromError(err).Status
}

// genericInternalMessage replaces internal error messages in production so
// that implementation detail never reaches a client.
const genericInternalMessage = "an internal error occurred"

// Sanitized returns the error as it may be shown to clients in the given
// environment. In production, internal and unrecognized errors lose their
// details and message.
func (e *Error) Sanitized(production bool) *Error {
	if !production {
		return e
	}
	if _, known := codeTable[e.Code]; known && e.Code != CodeInternal {
		return e
	}
	return &Error{
		Code:      CodeInternal,
		Message:   genericInternalMessage,
		Status:    codeTable[CodeInternal].status,
		Retryable: false,
	}
}
