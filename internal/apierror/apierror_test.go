// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTaxonomyStatusAndRetryability(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeAuth, http.StatusUnauthorized, false},
		{CodeAPIKey, http.StatusUnauthorized, false},
		{CodeAuthorization, http.StatusForbidden, false},
		{CodeValidation, http.StatusBadRequest, false},
		{CodeSchemaValidation, http.StatusBadRequest, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeRateLimitExceeded, http.StatusTooManyRequests, true},
		{CodeExternalAPI, http.StatusBadGateway, true},
		{CodeTimeout, http.StatusGatewayTimeout, true},
		{CodeServiceUnavail, http.StatusServiceUnavailable, true},
		{CodeInternal, http.StatusInternalServerError, false},
		{CodeCoordinate, http.StatusBadRequest, false},
		{CodeCache, http.StatusInternalServerError, false},
		{CodeConfiguration, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "test")
			if err.Status != tt.status {
				t.Errorf("status = %d, want %d", err.Status, tt.status)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", err.Retryable, tt.retryable)
			}
		})
	}
}

func TestUnknownCodeBecomesInternal(t *testing.T) {
	err := New(Code("MADE_UP"), "whatever")
	if err.Code != CodeInternal {
		t.Errorf("code = %s, want %s", err.Code, CodeInternal)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", err.Status)
	}
}

func TestFromErrorPassthrough(t *testing.T) {
	orig := New(CodeTimeout, "deadline exceeded")
	wrapped := fmt.Errorf("dispatch: %w", orig)

	got := FromError(wrapped)
	if got.Code != CodeTimeout {
		t.Errorf("code = %s, want %s", got.Code, CodeTimeout)
	}
}

func TestFromErrorUnclassified(t *testing.T) {
	got := FromError(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Errorf("code = %s, want %s", got.Code, CodeInternal)
	}
	if got.Err == nil {
		t.Error("cause not preserved")
	}
}

func TestFromErrorNil(t *testing.T) {
	if got := FromError(nil); got != nil {
		t.Errorf("FromError(nil) = %v, want nil", got)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := Wrap(errors.New("socket closed"), CodeExternalAPI, "upstream failed")
	if !errors.Is(err, New(CodeExternalAPI, "")) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, New(CodeTimeout, "")) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(CodeRateLimitExceeded, "slow down")) {
		t.Error("rate limit errors are retryable")
	}
	if IsRetryable(New(CodeValidation, "bad input")) {
		t.Error("validation errors are not retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("unclassified errors are not retryable")
	}
}

func TestSanitizedInProduction(t *testing.T) {
	internal := New(CodeInternal, "pointer dereference in cache shard 3").
		WithDetails(map[string]string{"shard": "3"})

	got := internal.Sanitized(true)
	if got.Message == internal.Message {
		t.Error("internal message should be replaced in production")
	}
	if got.Details != nil {
		t.Error("details should be elided in production")
	}

	// Non-internal codes keep their payload.
	val := New(CodeValidation, "x must be a number")
	if got := val.Sanitized(true); got.Message != "x must be a number" {
		t.Errorf("validation message changed: %q", got.Message)
	}
}

func TestSanitizedInDevelopment(t *testing.T) {
	internal := New(CodeInternal, "raw detail")
	if got := internal.Sanitized(false); got.Message != "raw detail" {
		t.Error("development should keep the raw message")
	}
}
