package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for page lengths. The engine
// works in inches; fonts are sized in points and the PDF canvas in millimeters.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as inches
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt, in and mm.
const (
	PointsPerInch = 72.0
	MmPerInch     = 25.4
	PtToIn        = 1.0 / PointsPerInch
)

// String returns the unit suffix, empty for unit-less values.
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Inches converts the length to inches. Unit-less values are taken as inches.
func (l Length) Inches() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value / MmPerInch
	case UnitCM:
		return l.Value * 10 / MmPerInch
	case UnitPT:
		return l.Value * PtToIn
	default:
		return l.Value
	}
}

// Points converts the length to points.
func (l Length) Points() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.Inches() * PointsPerInch
}

// ParseLength parses a length string such as "5.625in", "12.7mm" or "10",
// preserving its unit. Unparsable input yields a zero length.
func ParseLength(value string) Length {
	l, _ := parseLength(value)
	return l
}

// ParseFontSize parses a font size in points; "12", "12pt" and "0.25in" are
// all accepted.
func ParseFontSize(value string) (float64, error) {
	l, ok := parseLength(value)
	if !ok {
		return 0, fmt.Errorf("bad font size %q", value)
	}
	if l.Unit == UnitNone {
		return l.Value, nil
	}
	return l.Points(), nil
}

func parseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// InchesToMM converts page units to canvas millimeters.
func InchesToMM(in float64) float64 { return in * MmPerInch }
