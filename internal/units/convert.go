package units

import (
	"fmt"
	"strings"
)

type pair struct{ from, to string }

// fastPath holds conversions common enough in model data to skip parsing.
var fastPath = map[pair]float64{
	{"kW", "MW"}:           1e-3,
	{"MW", "GW"}:           1e-3,
	{"GW", "MW"}:           1e3,
	{"GW", "TW"}:           1e-3,
	{"MWh", "GWh"}:         1e-3,
	{"MWh", "TWh"}:         1e-6,
	{"GWh", "TWh"}:         1e-3,
	{"TWh", "GWh"}:         1e3,
	{"m3", "Mm3"}:          1e-6,
	{"Mm3", "m3"}:          1e6,
	{"EUR/MWh", "EUR/GWh"}: 1e3,
	{"EUR/GWh", "EUR/MWh"}: 1e-3,
}

// ConversionFactor returns the factor that converts a value given in from into
// to. from may carry a numeric multiplier prefix such as "2*MW".
func ConversionFactor(from, to string) (float64, error) {
	if from == "" || to == "" {
		return 0, fmt.Errorf("%w: from=%q to=%q", ErrEmptyUnit, from, to)
	}

	multiplier := 1.0
	base := from
	if i := strings.IndexByte(from, '*'); i > 0 {
		if m, err := Parse(from[:i]); err == nil && m.IsDimensionless() {
			multiplier, _ = Factor(m, One)
			base = from[i+1:]
		}
	}

	if base == to {
		if _, err := Parse(to); err != nil {
			return 0, err
		}
		return multiplier, nil
	}
	if f, ok := fastPath[pair{base, to}]; ok {
		if multiplier == 1 {
			return f, nil
		}
	}

	src, err := Parse(from)
	if err != nil {
		return 0, err
	}
	dst, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return Factor(src, dst)
}

// IsConvertible reports whether ConversionFactor(from, to) would succeed.
func IsConvertible(from, to string) bool {
	_, err := ConversionFactor(from, to)
	return err == nil
}
