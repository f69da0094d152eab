// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package logging

import (
	"strings"
)

// maskedKeyMaxLen bounds the total length of a masked credential so that
// very long secrets do not leak their length into log sinks.
const maskedKeyMaxLen = 12

// sensitiveParams lists query parameter names whose values are credentials.
var sensitiveParams = map[string]bool{
	"servicekey":    true,
	"service_key":   true,
	"apikey":        true,
	"api_key":       true,
	"token":         true,
	"secret":        true,
	"password":      true,
	"authorization": true,
}

// MaskKey masks a credential for logging. The first four characters are
// kept and the remainder is replaced with asterisks, capped at
// maskedKeyMaxLen total characters. Secrets of four characters or fewer
// are fully masked.
//
//	MaskKey("abcdefghijklmnop") -> "abcd********"
func MaskKey(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", maskedKeyMaxLen)
	}
	masked := len(secret) - 4
	if masked > maskedKeyMaxLen-4 {
		masked = maskedKeyMaxLen - 4
	}
	return secret[:4] + strings.Repeat("*", masked)
}

// SanitizeParams returns a copy of params with credential values masked.
// Use this before logging any outbound request parameter set.
func SanitizeParams(params map[string]string) map[string]string {
	sanitized := make(map[string]string, len(params))
	for k, v := range params {
		sanitized[k] = SanitizeValue(k, v)
	}
	return sanitized
}

// SanitizeValue masks a value when its key names credential material.
func SanitizeValue(key, value string) string {
	if sensitiveParams[strings.ToLower(key)] {
		return MaskKey(value)
	}
	return value
}

// SanitizeURL masks credential query parameters inside a raw URL string.
// It operates textually so that malformed URLs still come out masked.
func SanitizeURL(rawURL string) string {
	qIdx := strings.IndexByte(rawURL, '?')
	if qIdx < 0 {
		return rawURL
	}
	base, query := rawURL[:qIdx], rawURL[qIdx+1:]
	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		k, v := pair[:eq], pair[eq+1:]
		if sensitiveParams[strings.ToLower(k)] {
			pairs[i] = k + "=" + MaskKey(v)
		}
	}
	return base + "?" + strings.Join(pairs, "&")
}
