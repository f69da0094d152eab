// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package coord

import (
	"math"
	"testing"

	"github.com/joonake9644/public-api/internal/config"
)

func newTestEngine() *Engine {
	return NewEngine(config.CoordConfig{StrictKoreaBounds: true})
}

// seoulCityHall is the reference point used throughout: WGS84
// (126.9780, 37.5665).
var seoulCityHall = Point{X: 126.9780, Y: 37.5665}

func TestSupportedSystems(t *testing.T) {
	e := newTestEngine()
	codes := e.SupportedSystems()
	want := []Code{WGS84, GRS80Central, GRS80West, GRS80East, BesselCentral, KATEC, UTMK}
	if len(codes) != len(want) {
		t.Fatalf("got %d systems, want %d", len(codes), len(want))
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("systems[%d] = %s, want %s", i, codes[i], code)
		}
	}
}

func TestSeoulCityHallToGRS80Central(t *testing.T) {
	e := newTestEngine()

	got, err := e.Transform(seoulCityHall, WGS84, GRS80Central)
	if err != nil {
		t.Fatal(err)
	}

	// Published reference values for EPSG:5186, tolerance 1 m.
	if math.Abs(got.X-198056.37) > 1 {
		t.Errorf("x = %.2f, want 198056.37 +/- 1", got.X)
	}
	if math.Abs(got.Y-551885.03) > 1 {
		t.Errorf("y = %.2f, want 551885.03 +/- 1", got.Y)
	}
}

func TestRoundTripAllSystems(t *testing.T) {
	e := newTestEngine()

	points := []Point{
		seoulCityHall,
		{X: 129.0756, Y: 35.1796}, // Busan
		{X: 126.7052, Y: 37.4563}, // Incheon
		{X: 127.3845, Y: 36.3504}, // Daejeon
	}

	for _, code := range []Code{GRS80Central, GRS80West, GRS80East, BesselCentral, KATEC, UTMK} {
		for _, p := range points {
			projected, err := e.Transform(p, WGS84, code)
			if err != nil {
				t.Fatalf("%s forward: %v", code, err)
			}
			back, err := e.Transform(projected, code, WGS84)
			if err != nil {
				t.Fatalf("%s inverse: %v", code, err)
			}
			// Six decimal places of a degree is roughly 0.1 m.
			if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
				t.Errorf("%s round trip of (%g, %g) drifted to (%.8f, %.8f)",
					code, p.X, p.Y, back.X, back.Y)
			}
		}
	}
}

func TestSameSystemIdentity(t *testing.T) {
	e := newTestEngine()

	for _, code := range e.SupportedSystems() {
		p := Point{X: 200000, Y: 500000}
		if code == WGS84 {
			p = seoulCityHall
		}
		got, err := e.Transform(p, code, code)
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		if got != e.NormalizePoint(p) {
			t.Errorf("%s: same-system transform changed the point: %+v", code, got)
		}
	}
}

func TestSameSystemSkipsValidation(t *testing.T) {
	e := newTestEngine()

	// A point far outside every range still passes through unchanged
	// when source and target agree.
	p := Point{X: 9e9, Y: -9e9}
	got, err := e.Transform(p, GRS80Central, GRS80Central)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestUnknownSystem(t *testing.T) {
	e := newTestEngine()

	if _, err := e.Transform(seoulCityHall, Code("TM128"), WGS84); err == nil {
		t.Error("expected error for unknown source system")
	}
	if _, err := e.Transform(seoulCityHall, WGS84, Code("EPSG9999")); err == nil {
		t.Error("expected error for unknown target system")
	}
}

func TestTransformRejectsInvalidInput(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		p    Point
		from Code
	}{
		{"longitude out of range", Point{X: 200, Y: 37}, WGS84},
		{"latitude out of range", Point{X: 127, Y: 95}, WGS84},
		{"NaN x", Point{X: math.NaN(), Y: 500000}, GRS80Central},
		{"infinite y", Point{X: 200000, Y: math.Inf(1)}, GRS80Central},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Transform(tt.p, tt.from, UTMK); err == nil {
				t.Error("expected COORDINATE_ERROR")
			}
		})
	}
}

func TestTransformBatchSinglePass(t *testing.T) {
	e := newTestEngine()

	in := []Point{
		{X: 200000, Y: 600000},
		{X: 200100, Y: 600100},
	}
	out, err := e.TransformBatch(in, GRS80Central, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2", len(out))
	}

	// The grid origin of the central belt maps back to lat 38, lon 127.
	if math.Abs(out[0].X-127) > 1e-6 || math.Abs(out[0].Y-38) > 1e-6 {
		t.Errorf("origin mapped to (%.8f, %.8f), want (127, 38)", out[0].X, out[0].Y)
	}
	// 100 m northeast moves both axes by roughly a thousandth of a degree.
	if out[1].X <= out[0].X || out[1].Y <= out[0].Y {
		t.Errorf("second point should lie northeast of the first: %+v", out)
	}
}

func TestTransformBatchReportsFailingIndex(t *testing.T) {
	e := newTestEngine()

	in := []Point{
		{X: 127, Y: 37},
		{X: 500, Y: 37}, // invalid longitude
	}
	if _, err := e.TransformBatch(in, WGS84, GRS80Central); err == nil {
		t.Error("expected error for invalid element")
	}
}

func TestTransformWithMetadata(t *testing.T) {
	e := newTestEngine()

	meta, err := e.TransformWithMetadata(seoulCityHall, WGS84, UTMK)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Input.System != WGS84 || meta.Output.System != UTMK {
		t.Errorf("systems = %s -> %s", meta.Input.System, meta.Output.System)
	}
	if meta.Input.Point != seoulCityHall {
		t.Errorf("input point = %+v", meta.Input.Point)
	}
	if meta.Accuracy != "<1m" {
		t.Errorf("accuracy = %q, want <1m", meta.Accuracy)
	}
}

func TestDetectSystem(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		p    Point
		want Code
		ok   bool
	}{
		{"degrees detect WGS84", seoulCityHall, WGS84, true},
		{"central belt box", Point{X: 200000, Y: 600000}, GRS80Central, true},
		{"bessel-only band", Point{X: 200000, Y: 350000}, BesselCentral, true},
		{"UTM-K box", Point{X: 960000, Y: 1950000}, UTMK, true},
		{"nothing matches", Point{X: 5e6, Y: 5e6}, "", false},
		{"NaN", Point{X: math.NaN(), Y: 0}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.DetectSystem(tt.p)
			if ok != tt.ok || got != tt.want {
				t.Errorf("DetectSystem(%+v) = (%s, %v), want (%s, %v)", tt.p, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDetectSystemCoversTransformOutput(t *testing.T) {
	e := newTestEngine()

	for _, code := range []Code{GRS80Central, BesselCentral, KATEC, UTMK} {
		out, err := e.Transform(seoulCityHall, WGS84, code)
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		detected, ok := e.DetectSystem(out)
		if !ok {
			t.Errorf("%s output (%g, %g) not detected by any system", code, out.X, out.Y)
			continue
		}
		// Detection prefers earlier registry entries when boxes overlap;
		// the detected system's box must cover the point either way.
		s, _ := Lookup(detected)
		if !s.XRange.Contains(out.X) || !s.YRange.Contains(out.Y) {
			t.Errorf("%s output detected as %s whose box excludes it", code, detected)
		}
	}
}

func TestValidatePoint(t *testing.T) {
	e := newTestEngine()

	// Valid Korean point: no errors, no warnings, detected as WGS84.
	result, err := e.ValidatePoint(seoulCityHall, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid || len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.DetectedSystem != WGS84 {
		t.Errorf("detectedSystem = %s, want WGS84", result.DetectedSystem)
	}

	// Outside Korea but inside the definition: warning, still valid.
	paris := Point{X: 2.3522, Y: 48.8566}
	result, err = e.ValidatePoint(paris, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Error("points outside Korea are warnings, not errors")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a Korea-range warning")
	}

	// Outside the definition range: error.
	result, err = e.ValidatePoint(Point{X: 300, Y: 37}, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Error("longitude 300 must be invalid")
	}

	// Unknown system: an error return, not a result.
	if _, err := e.ValidatePoint(seoulCityHall, Code("nope")); err == nil {
		t.Error("expected error for unknown system")
	}
}

func TestValidatePointStrictBoundsOff(t *testing.T) {
	e := NewEngine(config.CoordConfig{StrictKoreaBounds: false})

	paris := Point{X: 2.3522, Y: 48.8566}
	result, err := e.ValidatePoint(paris, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings should be suppressed when strict bounds are off: %+v", result.Warnings)
	}
}

func TestIsValidPoint(t *testing.T) {
	e := newTestEngine()

	if !e.IsValidPoint(seoulCityHall, WGS84) {
		t.Error("Seoul City Hall is valid WGS84")
	}
	if e.IsValidPoint(Point{X: 300, Y: 37}, WGS84) {
		t.Error("longitude 300 is not valid WGS84")
	}
	if e.IsValidPoint(Point{X: math.Inf(1), Y: 0}, GRS80Central) {
		t.Error("infinite coordinates are never valid")
	}
	if e.IsValidPoint(seoulCityHall, Code("nope")) {
		t.Error("unknown systems validate nothing")
	}
}

func TestBetweenProjectedSystems(t *testing.T) {
	e := newTestEngine()

	// GRS80 central -> UTM-K directly, cross-checked against the
	// two-step path through WGS84.
	p := Point{X: 198056.37, Y: 551885.03}

	direct, err := e.Transform(p, GRS80Central, UTMK)
	if err != nil {
		t.Fatal(err)
	}

	viaWGS, err := e.Transform(p, GRS80Central, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	twoStep, err := e.Transform(viaWGS, WGS84, UTMK)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(direct.X-twoStep.X) > 0.001 || math.Abs(direct.Y-twoStep.Y) > 0.001 {
		t.Errorf("direct (%f, %f) differs from two-step (%f, %f)",
			direct.X, direct.Y, twoStep.X, twoStep.Y)
	}
}

func TestBesselDatumShiftIsMaterial(t *testing.T) {
	e := newTestEngine()

	// The Tokyo-datum shift moves Korean points by hundreds of metres;
	// if the Helmert step were skipped the Bessel result would nearly
	// coincide with the GRS80 central belt value.
	grs, err := e.Transform(seoulCityHall, WGS84, GRS80Central)
	if err != nil {
		t.Fatal(err)
	}
	bessel, err := e.Transform(seoulCityHall, WGS84, BesselCentral)
	if err != nil {
		t.Fatal(err)
	}

	dx := math.Abs(grs.X - bessel.X)
	dy := math.Abs((grs.Y - 600000) - (bessel.Y - 500000))
	if dx < 50 && dy < 50 {
		t.Errorf("datum shift looks absent: grs=%+v bessel=%+v", grs, bessel)
	}
}
