// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/joonake9644/public-api/internal/apierror"
)

// classifyTransport maps a transport-level failure into the taxonomy:
// deadline or cancellation becomes a timeout, everything else a
// connection-class external error.
func classifyTransport(err error) *apierror.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierror.Wrap(err, apierror.CodeTimeout, "upstream request timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierror.Wrap(err, apierror.CodeTimeout, "upstream request timed out")
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apierror.Wrap(err, apierror.CodeExternalAPI, "upstream host could not be resolved")
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return apierror.Wrap(err, apierror.CodeTimeout, "upstream request timed out")
	}

	return apierror.Wrap(err, apierror.CodeExternalAPI, "upstream connection failed")
}

// classifyStatus maps a non-200 upstream status into the taxonomy.
// 429 is an upstream rate limit, 5xx an external server failure, and
// remaining 4xx an external client failure that must not be retried.
func classifyStatus(status int, body string) *apierror.Error {
	switch {
	case status == http.StatusTooManyRequests:
		return apierror.Newf(apierror.CodeRateLimitExceeded,
			"upstream rate limit exceeded (HTTP %d)", status)
	case status >= 500:
		return apierror.Newf(apierror.CodeExternalAPI,
			"upstream server error (HTTP %d)", status).
			WithDetails(map[string]any{"body": body})
	default:
		err := apierror.Newf(apierror.CodeExternalAPI,
			"upstream rejected the request (HTTP %d)", status).
			WithDetails(map[string]any{"body": body})
		err.Retryable = false
		return err
	}
}

// retriable reports whether the classified error permits another
// attempt: network-class errors, upstream 429 and 5xx qualify; external
// client rejections short-circuit.
func retriable(err *apierror.Error) bool {
	return err.Retryable
}
