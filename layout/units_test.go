package layout

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		inches float64
		unit   Unit
	}{
		{"10in", 10, UnitIN},
		{"25.4mm", 1, UnitMM},
		{"2.54cm", 1, UnitCM},
		{"72pt", 1, UnitPT},
		{"5.625", 5.625, UnitNone},
		{" 3 IN ", 3, UnitIN},
		{"", 0, UnitNone},
		{"abc", 0, UnitNone},
	}
	for _, tc := range cases {
		l := ParseLength(tc.in)
		if l.Unit != tc.unit {
			t.Errorf("%q: unit got %s want %s", tc.in, l.Unit, tc.unit)
		}
		if !almostEqual(l.Inches(), tc.inches) {
			t.Errorf("%q: inches got %g want %g", tc.in, l.Inches(), tc.inches)
		}
	}
}

func TestLengthPoints(t *testing.T) {
	if got := (Length{Value: 1, Unit: UnitIN}).Points(); !almostEqual(got, 72) {
		t.Fatalf("1in should be 72pt, got %g", got)
	}
	if got := (Length{Value: 14, Unit: UnitPT}).Points(); got != 14 {
		t.Fatalf("14pt should stay 14pt, got %g", got)
	}
	if got := InchesToMM(1); !almostEqual(got, 25.4) {
		t.Fatalf("1in should be 25.4mm, got %g", got)
	}
}

func TestParseFontSize(t *testing.T) {
	cases := map[string]float64{"12": 12, "12pt": 12, "0.5in": 36, "  18PT ": 18}
	for in, want := range cases {
		got, err := ParseFontSize(in)
		if err != nil || !almostEqual(got, want) {
			t.Errorf("ParseFontSize(%q) = %g, %v; want %g", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "big", "pt"} {
		if _, err := ParseFontSize(bad); err == nil {
			t.Errorf("ParseFontSize(%q) should fail", bad)
		}
	}
}
