// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package models holds the response shapes shared by the upstream client
// and the handler layer.
package models

import (
	"time"

	"github.com/joonake9644/public-api/internal/apierror"
)

// ErrorInfo is the client-visible error payload. Code is drawn from the
// closed taxonomy in the apierror package.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Metadata annotates an envelope.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`

	// Cached reports whether the payload came from the response cache.
	// Omitted on responses where caching does not apply.
	Cached *bool `json:"cached,omitempty"`

	// ProcessingTime is the server-side handling time in milliseconds.
	ProcessingTime *int64 `json:"processingTime,omitempty"`
}

// APIEnvelope is the uniform JSON response container. Exactly one of
// Data and Error is non-null; Success mirrors Data being present.
type APIEnvelope struct {
	Success  bool       `json:"success"`
	Data     any        `json:"data"`
	Error    *ErrorInfo `json:"error"`
	Metadata Metadata   `json:"metadata"`
}

// Bool returns a pointer to b for metadata fields.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to v for metadata fields.
func Int64(v int64) *int64 { return &v }

// Success builds a success envelope around a payload.
func Success(data any, cached bool) *APIEnvelope {
	return &APIEnvelope{
		Success: true,
		Data:    data,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Cached:    Bool(cached),
		},
	}
}

// Failure builds an error envelope from a classified error.
func Failure(err *apierror.Error) *APIEnvelope {
	return &APIEnvelope{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(err.Code),
			Message:   err.Message,
			Details:   err.Details,
			Retryable: err.Retryable,
		},
		Metadata: Metadata{Timestamp: time.Now()},
	}
}

// WithCached returns a shallow copy of the envelope with the cached flag
// replaced. Used when serving a stored envelope out of the cache.
func (e *APIEnvelope) WithCached(cached bool) *APIEnvelope {
	cp := *e
	cp.Metadata.Cached = Bool(cached)
	return &cp
}
