// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package coord

import (
	"math"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/config"
)

// Point is a coordinate pair in {x, y} form. For degree systems x is
// longitude and y is latitude.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TransformResult pairs a point with its system for metadata responses.
type TransformResult struct {
	Point  Point `json:"point"`
	System Code  `json:"system"`
}

// TransformMetadata is the verbose transform response shape.
type TransformMetadata struct {
	Input    TransformResult `json:"input"`
	Output   TransformResult `json:"output"`
	Accuracy string          `json:"accuracy"`
}

// Engine converts points between the supported systems. It is pure and
// stateless apart from the Korea-bounds policy flag; safe for concurrent
// use.
type Engine struct {
	strictKoreaBounds bool
}

// NewEngine creates an engine with the configured validation policy.
func NewEngine(cfg config.CoordConfig) *Engine {
	return &Engine{strictKoreaBounds: cfg.StrictKoreaBounds}
}

// SupportedSystems returns the closed set of system codes.
func (e *Engine) SupportedSystems() []Code {
	return SupportedSystems()
}

// NormalizePoint returns the {x, y} form of a point. Points are already
// held in that form; this is the identity anchor for the same-system
// transform guarantee.
func (e *Engine) NormalizePoint(p Point) Point {
	return p
}

// converter is a prepared single-pass conversion between two systems.
type converter func(Point) Point

// prepare builds the conversion pipeline src -> WGS84 geodetic -> dst.
func prepare(src, dst *System) converter {
	return func(p Point) Point {
		var lat, lon float64
		if src.IsGeographic() {
			lat, lon = p.Y*degToRad, p.X*degToRad
		} else {
			lat, lon = tmInverse(src, p.X, p.Y)
		}

		lat, lon = toWGS84Geodetic(src, lat, lon)
		lat, lon = fromWGS84Geodetic(dst, lat, lon)

		if dst.IsGeographic() {
			return Point{X: lon / degToRad, Y: lat / degToRad}
		}
		x, y := tmForward(dst, lat, lon)
		return Point{X: x, Y: y}
	}
}

// Transform converts a point between systems. Same-system transforms
// return the normalized point unchanged without validation; otherwise
// the input is validated under the source system. The result is not
// checked against the target system's range.
func (e *Engine) Transform(p Point, from, to Code) (Point, error) {
	src, ok := Lookup(from)
	if !ok {
		return Point{}, apierror.Newf(apierror.CodeCoordinate, "unknown coordinate system %q", from)
	}
	dst, ok := Lookup(to)
	if !ok {
		return Point{}, apierror.Newf(apierror.CodeCoordinate, "unknown coordinate system %q", to)
	}

	if from == to {
		return e.NormalizePoint(p), nil
	}

	if err := e.validateForTransform(p, src); err != nil {
		return Point{}, err
	}

	out := prepare(src, dst)(p)
	return out, nil
}

// TransformBatch converts points in a single pass using one prepared
// converter. Validation follows the single-point rules per element.
func (e *Engine) TransformBatch(points []Point, from, to Code) ([]Point, error) {
	src, ok := Lookup(from)
	if !ok {
		return nil, apierror.Newf(apierror.CodeCoordinate, "unknown coordinate system %q", from)
	}
	dst, ok := Lookup(to)
	if !ok {
		return nil, apierror.Newf(apierror.CodeCoordinate, "unknown coordinate system %q", to)
	}

	out := make([]Point, len(points))
	if from == to {
		copy(out, points)
		return out, nil
	}

	conv := prepare(src, dst)
	for i, p := range points {
		if err := e.validateForTransform(p, src); err != nil {
			return nil, apierror.FromError(err).WithDetails(map[string]any{"index": i})
		}
		out[i] = conv(p)
	}
	return out, nil
}

// TransformWithMetadata converts a point and wraps input, output and the
// advertised accuracy.
func (e *Engine) TransformWithMetadata(p Point, from, to Code) (*TransformMetadata, error) {
	out, err := e.Transform(p, from, to)
	if err != nil {
		return nil, err
	}
	return &TransformMetadata{
		Input:    TransformResult{Point: p, System: from},
		Output:   TransformResult{Point: out, System: to},
		Accuracy: Accuracy,
	}, nil
}

// DetectSystem returns the code of the first system whose numeric range
// covers the point, in registry preference order (WGS84 first, then the
// projected systems), or false when nothing matches.
func (e *Engine) DetectSystem(p Point) (Code, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return "", false
	}
	for _, s := range systems {
		if s.XRange.Contains(p.X) && s.YRange.Contains(p.Y) {
			return s.Code, true
		}
	}
	return "", false
}

// validateForTransform enforces the source-system domain and returns a
// COORDINATE_ERROR on violation. Warnings never block a transform.
func (e *Engine) validateForTransform(p Point, s *System) error {
	result := e.validate(p, s)
	if !result.Valid {
		return apierror.New(apierror.CodeCoordinate, "invalid point for system "+string(s.Code)).
			WithDetails(map[string]any{"errors": result.Errors})
	}
	return nil
}
