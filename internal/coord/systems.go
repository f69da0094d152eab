// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

// Package coord implements conversion between the seven Korean geodetic
// and projected coordinate systems used by the gateway, with validation
// and system autodetection. The registry is table-driven and closed; the
// numerics are an ellipsoidal transverse-Mercator (Krüger series) with a
// 7-parameter Helmert shift for the Bessel-datum systems.
package coord

// Code names one of the seven supported coordinate systems.
type Code string

const (
	WGS84         Code = "WGS84"
	GRS80Central  Code = "GRS80_CENTRAL"
	GRS80West     Code = "GRS80_WEST"
	GRS80East     Code = "GRS80_EAST"
	BesselCentral Code = "BESSEL_CENTRAL"
	KATEC         Code = "KATEC"
	UTMK          Code = "UTM_K"
)

// Unit is the axis unit of a system.
type Unit string

const (
	UnitDegree Unit = "degree"
	UnitMeter  Unit = "meter"
)

// ellipsoid holds reference ellipsoid parameters.
type ellipsoid struct {
	a    float64 // semi-major axis (m)
	invF float64 // inverse flattening
}

var (
	ellipsoidWGS84  = ellipsoid{a: 6378137.0, invF: 298.257223563}
	ellipsoidGRS80  = ellipsoid{a: 6378137.0, invF: 298.257222101}
	ellipsoidBessel = ellipsoid{a: 6377397.155, invF: 299.1528128}
)

// f returns the flattening.
func (e ellipsoid) f() float64 { return 1 / e.invF }

// e2 returns the first eccentricity squared.
func (e ellipsoid) e2() float64 {
	f := e.f()
	return f * (2 - f)
}

// towgs84Korea is the published 7-parameter shift from the Korean Bessel
// datum (Tokyo) to WGS84: dx, dy, dz in metres, rx, ry, rz in arc
// seconds (position vector convention), scale in ppm.
var towgs84Korea = [7]float64{-115.80, 474.99, 674.11, 1.16, -2.31, -1.63, 6.43}

// Range is an inclusive axis interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// System is one named projection. The seven definitions below are the
// complete set; there is no runtime mutation.
type System struct {
	Code Code   `json:"code"`
	EPSG int    `json:"epsg"`
	Proj string `json:"proj"`
	Unit Unit   `json:"unit"`

	// XRange and YRange bound the system's expected values; used for
	// validation warnings and autodetection.
	XRange Range `json:"xRange"`
	YRange Range `json:"yRange"`

	ellipsoid ellipsoid
	// Projection parameters (meter systems only), radians and metres.
	lat0, lon0   float64
	k0           float64
	falseE       float64
	falseN       float64
	datumShift   *[7]float64 // nil when the datum matches WGS84
}

// IsGeographic reports whether the system's axes are degrees.
func (s *System) IsGeographic() bool { return s.Unit == UnitDegree }

const degToRad = 3.14159265358979323846 / 180

// systems is the closed registry, in autodetection preference order.
var systems = []*System{
	{
		Code:      WGS84,
		EPSG:      4326,
		Proj:      "+proj=longlat +datum=WGS84 +no_defs",
		Unit:      UnitDegree,
		XRange:    Range{-180, 180},
		YRange:    Range{-90, 90},
		ellipsoid: ellipsoidWGS84,
	},
	{
		Code:      GRS80Central,
		EPSG:      5186,
		Proj:      "+proj=tmerc +lat_0=38 +lon_0=127 +k=1 +x_0=200000 +y_0=600000 +ellps=GRS80 +units=m +no_defs",
		Unit:      UnitMeter,
		XRange:    Range{100000, 300000},
		YRange:    Range{400000, 800000},
		ellipsoid: ellipsoidGRS80,
		lat0:      38 * degToRad,
		lon0:      127 * degToRad,
		k0:        1,
		falseE:    200000,
		falseN:    600000,
	},
	{
		Code:      GRS80West,
		EPSG:      5185,
		Proj:      "+proj=tmerc +lat_0=38 +lon_0=125 +k=1 +x_0=200000 +y_0=600000 +ellps=GRS80 +units=m +no_defs",
		Unit:      UnitMeter,
		XRange:    Range{100000, 300000},
		YRange:    Range{400000, 800000},
		ellipsoid: ellipsoidGRS80,
		lat0:      38 * degToRad,
		lon0:      125 * degToRad,
		k0:        1,
		falseE:    200000,
		falseN:    600000,
	},
	{
		Code:      GRS80East,
		EPSG:      5187,
		Proj:      "+proj=tmerc +lat_0=38 +lon_0=129 +k=1 +x_0=200000 +y_0=600000 +ellps=GRS80 +units=m +no_defs",
		Unit:      UnitMeter,
		XRange:    Range{100000, 300000},
		YRange:    Range{400000, 800000},
		ellipsoid: ellipsoidGRS80,
		lat0:      38 * degToRad,
		lon0:      129 * degToRad,
		k0:        1,
		falseE:    200000,
		falseN:    600000,
	},
	{
		Code: BesselCentral,
		EPSG: 5174,
		Proj: "+proj=tmerc +lat_0=38 +lon_0=127.0028902777778 +k=1 +x_0=200000 +y_0=500000 +ellps=bessel " +
			"+towgs84=-115.80,474.99,674.11,1.16,-2.31,-1.63,6.43 +units=m +no_defs",
		Unit:       UnitMeter,
		XRange:     Range{100000, 300000},
		YRange:     Range{300000, 700000},
		ellipsoid:  ellipsoidBessel,
		lat0:       38 * degToRad,
		lon0:       127.0028902777778 * degToRad,
		k0:         1,
		falseE:     200000,
		falseN:     500000,
		datumShift: &towgs84Korea,
	},
	{
		Code: KATEC,
		EPSG: 5178,
		Proj: "+proj=tmerc +lat_0=38 +lon_0=128 +k=0.9999 +x_0=200000 +y_0=500000 +ellps=bessel " +
			"+towgs84=-115.80,474.99,674.11,1.16,-2.31,-1.63,6.43 +units=m +no_defs",
		Unit:       UnitMeter,
		XRange:     Range{100000, 300000},
		YRange:     Range{300000, 700000},
		ellipsoid:  ellipsoidBessel,
		lat0:       38 * degToRad,
		lon0:       128 * degToRad,
		k0:         0.9999,
		falseE:     200000,
		falseN:     500000,
		datumShift: &towgs84Korea,
	},
	{
		Code:      UTMK,
		EPSG:      5179,
		Proj:      "+proj=tmerc +lat_0=38 +lon_0=127.5 +k=0.9996 +x_0=1000000 +y_0=2000000 +ellps=GRS80 +units=m +no_defs",
		Unit:      UnitMeter,
		XRange:    Range{900000, 1100000},
		YRange:    Range{1800000, 2200000},
		ellipsoid: ellipsoidGRS80,
		lat0:      38 * degToRad,
		lon0:      127.5 * degToRad,
		k0:        0.9996,
		falseE:    1000000,
		falseN:    2000000,
	},
}

// systemsByCode indexes the registry.
var systemsByCode = func() map[Code]*System {
	m := make(map[Code]*System, len(systems))
	for _, s := range systems {
		m[s.Code] = s
	}
	return m
}()

// Lookup returns the system for a code.
func Lookup(code Code) (*System, bool) {
	s, ok := systemsByCode[code]
	return s, ok
}

// SupportedSystems returns the closed code set in registry order.
func SupportedSystems() []Code {
	codes := make([]Code, len(systems))
	for i, s := range systems {
		codes[i] = s.Code
	}
	return codes
}

// koreaLonRange and koreaLatRange bound the expected Korean service
// area; values outside produce warnings, never errors.
var (
	koreaLonRange = Range{124, 132}
	koreaLatRange = Range{33, 39}
)

// Accuracy is the advertised conversion accuracy for same-datum pairs
// within the Korean range.
const Accuracy = "<1m"
