// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package coord

import (
	"fmt"
	"math"
)

// ValidationResult reports point validity under a system. Errors mark
// domain violations; warnings flag values outside the expected Korean
// range and never invalidate a point.
type ValidationResult struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	DetectedSystem Code     `json:"detectedSystem,omitempty"`
}

// ValidatePoint checks a point against a system's definition. Degree
// systems require lon in [-180, 180] and lat in [-90, 90]; projected
// systems require finite values. Out-of-definition values are errors.
// Degree points outside the Korean range are warnings when strict bounds
// are on; projected points outside the system's box are always warnings.
func (e *Engine) ValidatePoint(p Point, code Code) (ValidationResult, error) {
	s, ok := Lookup(code)
	if !ok {
		return ValidationResult{}, fmt.Errorf("unknown coordinate system %q", code)
	}
	return e.validate(p, s), nil
}

// IsValidPoint reports whether ValidatePoint finds no errors.
func (e *Engine) IsValidPoint(p Point, code Code) bool {
	result, err := e.ValidatePoint(p, code)
	return err == nil && result.Valid
}

func (e *Engine) validate(p Point, s *System) ValidationResult {
	result := ValidationResult{Valid: true}

	if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
		result.Valid = false
		result.Errors = append(result.Errors, "x is not a finite number")
	}
	if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		result.Valid = false
		result.Errors = append(result.Errors, "y is not a finite number")
	}
	if !result.Valid {
		return result
	}

	if s.IsGeographic() {
		if !s.XRange.Contains(p.X) {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("longitude %g outside [%g, %g]", p.X, s.XRange.Min, s.XRange.Max))
		}
		if !s.YRange.Contains(p.Y) {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("latitude %g outside [%g, %g]", p.Y, s.YRange.Min, s.YRange.Max))
		}
		if result.Valid && e.strictKoreaBounds {
			if !koreaLonRange.Contains(p.X) || !koreaLatRange.Contains(p.Y) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("point (%g, %g) is outside the expected Korean range", p.X, p.Y))
			}
		}
	} else {
		// Projected domain: finite values only (checked above); the
		// bounded box is advisory.
		if !s.XRange.Contains(p.X) || !s.YRange.Contains(p.Y) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("point (%g, %g) is outside the expected range for %s", p.X, p.Y, s.Code))
		}
	}

	if result.Valid {
		if detected, ok := e.DetectSystem(p); ok {
			result.DetectedSystem = detected
		}
	}
	return result
}
