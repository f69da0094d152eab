// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/coord"
)

// transformQuery is the GET transform request after parsing.
type transformQuery struct {
	From coord.Code
	To   coord.Code
	P    coord.Point
}

// parseTransformQuery reads from/to/x/y. from is required; to defaults
// to WGS84; x and y must be numbers.
func parseTransformQuery(r *http.Request) (transformQuery, error) {
	q := r.URL.Query()

	from := q.Get("from")
	if from == "" {
		return transformQuery{}, apierror.New(apierror.CodeValidation, "from is required")
	}
	to := q.Get("to")
	if to == "" {
		to = string(coord.WGS84)
	}
	if _, ok := coord.Lookup(coord.Code(from)); !ok {
		return transformQuery{}, apierror.Newf(apierror.CodeValidation, "unknown coordinate system %q", from)
	}
	if _, ok := coord.Lookup(coord.Code(to)); !ok {
		return transformQuery{}, apierror.Newf(apierror.CodeValidation, "unknown coordinate system %q", to)
	}

	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		return transformQuery{}, apierror.New(apierror.CodeValidation, "x must be a number")
	}
	y, err := strconv.ParseFloat(q.Get("y"), 64)
	if err != nil {
		return transformQuery{}, apierror.New(apierror.CodeValidation, "y must be a number")
	}

	return transformQuery{
		From: coord.Code(from),
		To:   coord.Code(to),
		P:    coord.Point{X: x, Y: y},
	}, nil
}

// batchPoint accepts either {x, y} or {longitude, latitude} element
// shapes in batch bodies.
type batchPoint struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// toPoint normalizes a batch element to {x, y} form.
func (p batchPoint) toPoint() (coord.Point, bool) {
	if p.X != nil && p.Y != nil {
		return coord.Point{X: *p.X, Y: *p.Y}, true
	}
	if p.Longitude != nil && p.Latitude != nil {
		return coord.Point{X: *p.Longitude, Y: *p.Latitude}, true
	}
	return coord.Point{}, false
}

// transformBatchRequest is the POST transform body.
type transformBatchRequest struct {
	From   string       `json:"from" validate:"required,coordsystem"`
	To     string       `json:"to" validate:"omitempty,coordsystem"`
	Points []batchPoint `json:"points" validate:"required,min=1,max=100"`
}

// addressQuery is the address search request after parsing and
// defaulting.
type addressQuery struct {
	Keyword           string `validate:"required,min=2"`
	PageNo            int    `validate:"min=1"`
	NumOfRows         int    `validate:"min=1,max=100"`
	ConvertCoordinate bool
	TargetSystem      string `validate:"omitempty,coordsystem"`
}

// parseAddressQuery reads keyword/pageNo/numOfRows with defaults.
// Numeric fields reject non-numeric input; range checks run through the
// struct validator afterwards.
func parseAddressQuery(r *http.Request) (addressQuery, error) {
	q := r.URL.Query()

	out := addressQuery{
		Keyword:      strings.TrimSpace(q.Get("keyword")),
		PageNo:       1,
		NumOfRows:    10,
		TargetSystem: q.Get("targetSystem"),
	}

	if raw := q.Get("pageNo"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return out, apierror.New(apierror.CodeValidation, "pageNo must be a number")
		}
		out.PageNo = n
	}
	if raw := q.Get("numOfRows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return out, apierror.New(apierror.CodeValidation, "numOfRows must be a number")
		}
		out.NumOfRows = n
	}
	out.ConvertCoordinate = q.Get("convertCoordinate") == "true"

	return out, nil
}

// clientIdentifier derives the rate-limit identifier for a request: the
// real client IP when resolvable, the raw remote address otherwise.
func clientIdentifier(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
