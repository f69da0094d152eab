// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package coord

import "math"

// Datum conversion: geodetic <-> geocentric (ECEF) plus the 7-parameter
// Helmert transformation in the position-vector convention used by PROJ
// +towgs84 strings.

const arcsecToRad = math.Pi / (180 * 3600)

// geodeticToECEF converts geodetic radians and height to geocentric
// cartesian metres on the given ellipsoid. All gateway conversions are
// surface points, so height is zero.
func geodeticToECEF(e ellipsoid, lat, lon float64) (x, y, z float64) {
	e2 := e.e2()
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := e.a / math.Sqrt(1-e2*sinLat*sinLat)

	x = n * cosLat * math.Cos(lon)
	y = n * cosLat * math.Sin(lon)
	z = n * (1 - e2) * sinLat
	return x, y, z
}

// ecefToGeodetic converts geocentric cartesian metres to geodetic
// radians on the given ellipsoid, iterating on latitude. Converges to
// sub-millimetre in a handful of rounds for surface points.
func ecefToGeodetic(e ellipsoid, x, y, z float64) (lat, lon float64) {
	e2 := e.e2()
	p := math.Hypot(x, y)
	lon = math.Atan2(y, x)

	// Initial guess ignores ellipsoidal height.
	lat = math.Atan2(z, p*(1-e2))
	for i := 0; i < 8; i++ {
		sinLat := math.Sin(lat)
		n := e.a / math.Sqrt(1-e2*sinLat*sinLat)
		h := p/math.Cos(lat) - n
		next := math.Atan2(z, p*(1-e2*n/(n+h)))
		if math.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}
	return lat, lon
}

// helmertForward applies a position-vector 7-parameter shift
// (local datum -> WGS84).
func helmertForward(p [7]float64, x, y, z float64) (xo, yo, zo float64) {
	dx, dy, dz := p[0], p[1], p[2]
	rx := p[3] * arcsecToRad
	ry := p[4] * arcsecToRad
	rz := p[5] * arcsecToRad
	s := 1 + p[6]*1e-6

	xo = dx + s*(x-rz*y+ry*z)
	yo = dy + s*(rz*x+y-rx*z)
	zo = dz + s*(-ry*x+rx*y+z)
	return xo, yo, zo
}

// helmertInverse applies the reverse shift (WGS84 -> local datum) using
// the small-angle inverse (rotation transpose), which is exact to well
// below the millimetre at these parameter magnitudes.
func helmertInverse(p [7]float64, x, y, z float64) (xo, yo, zo float64) {
	dx, dy, dz := p[0], p[1], p[2]
	rx := p[3] * arcsecToRad
	ry := p[4] * arcsecToRad
	rz := p[5] * arcsecToRad
	s := 1 + p[6]*1e-6

	tx := (x - dx) / s
	ty := (y - dy) / s
	tz := (z - dz) / s

	xo = tx + rz*ty - ry*tz
	yo = -rz*tx + ty + rx*tz
	zo = ry*tx - rx*ty + tz
	return xo, yo, zo
}

// toWGS84Geodetic converts geodetic radians on a system's datum to
// geodetic radians on WGS84. Systems without a datum shift pass through:
// GRS80 and WGS84 are treated as coincident.
func toWGS84Geodetic(s *System, lat, lon float64) (float64, float64) {
	if s.datumShift == nil {
		return lat, lon
	}
	x, y, z := geodeticToECEF(s.ellipsoid, lat, lon)
	x, y, z = helmertForward(*s.datumShift, x, y, z)
	return ecefToGeodetic(ellipsoidWGS84, x, y, z)
}

// fromWGS84Geodetic converts geodetic radians on WGS84 to geodetic
// radians on a system's datum.
func fromWGS84Geodetic(s *System, lat, lon float64) (float64, float64) {
	if s.datumShift == nil {
		return lat, lon
	}
	x, y, z := geodeticToECEF(ellipsoidWGS84, lat, lon)
	x, y, z = helmertInverse(*s.datumShift, x, y, z)
	return ecefToGeodetic(s.ellipsoid, x, y, z)
}
