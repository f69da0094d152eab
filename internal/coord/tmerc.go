// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package coord

import "math"

// Ellipsoidal transverse-Mercator projection, forward and inverse, using
// the classic Krüger series. Accurate to well under a millimetre within
// a few degrees of the central meridian, which covers the Korean belts.

// meridionalArc computes the meridional arc length M(phi) on the system
// ellipsoid.
func meridionalArc(e ellipsoid, phi float64) float64 {
	e2 := e.e2()
	e4 := e2 * e2
	e6 := e4 * e2
	return e.a * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// tmForward projects geodetic radians (lat, lon) to projected metres
// (x, y) under the system's transverse-Mercator parameters.
func tmForward(s *System, lat, lon float64) (x, y float64) {
	e2 := s.ellipsoid.e2()
	ep2 := e2 / (1 - e2)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	tanLat := math.Tan(lat)

	n := s.ellipsoid.a / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := ep2 * cosLat * cosLat
	a := (lon - s.lon0) * cosLat

	m := meridionalArc(s.ellipsoid, lat)
	m0 := meridionalArc(s.ellipsoid, s.lat0)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x = s.k0*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*ep2)*a5/120) + s.falseE

	y = s.k0*(m-m0+
		n*tanLat*(a2/2+
			(5-t+9*c+4*c*c)*a4/24+
			(61-58*t+t*t+600*c-330*ep2)*a6/720)) + s.falseN

	return x, y
}

// tmInverse unprojects metres (x, y) to geodetic radians (lat, lon).
func tmInverse(s *System, x, y float64) (lat, lon float64) {
	e2 := s.ellipsoid.e2()
	ep2 := e2 / (1 - e2)
	a := s.ellipsoid.a

	m0 := meridionalArc(s.ellipsoid, s.lat0)
	m := m0 + (y-s.falseN)/s.k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	sqrt1e2 := math.Sqrt(1 - e2)
	e1 := (1 - sqrt1e2) / (1 + sqrt1e2)
	e1p2 := e1 * e1
	e1p3 := e1p2 * e1
	e1p4 := e1p3 * e1

	phi1 := mu +
		(3*e1/2-27*e1p3/32)*math.Sin(2*mu) +
		(21*e1p2/16-55*e1p4/32)*math.Sin(4*mu) +
		(151*e1p3/96)*math.Sin(6*mu) +
		(1097*e1p4/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	den := 1 - e2*sinPhi1*sinPhi1
	n1 := a / math.Sqrt(den)
	r1 := a * (1 - e2) / math.Pow(den, 1.5)
	d := (x - s.falseE) / (n1 * s.k0)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	lat = phi1 - (n1*tanPhi1/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d6/720)

	lon = s.lon0 + (d-
		(1+2*t1+c1)*d3/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d5/120)/cosPhi1

	return lat, lon
}
