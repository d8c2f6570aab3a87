package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyUnit is returned when a conversion is requested for a missing unit.
	ErrEmptyUnit = errors.New("units: unit is empty")
	// ErrUnknownUnit is returned for unit tokens the converter does not know.
	ErrUnknownUnit = errors.New("units: unknown unit")
	// ErrIncompatible is returned when two units have different dimensions.
	ErrIncompatible = errors.New("units: incompatible units")
)

// base dimensions, used as indexes into dims.
const (
	dimPower = iota
	dimTime
	dimVolume
	dimCurrency
	dimMass
	numDims
)

var dimNames = [numDims]string{"W", "s", "m3", "EUR", "t"}

type dims [numDims]int8

func (d dims) add(o dims) dims {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

func (d dims) sub(o dims) dims {
	for i := range d {
		d[i] -= o[i]
	}
	return d
}

func (d dims) String() string {
	var parts []string
	for i, e := range d {
		switch {
		case e == 0:
		case e == 1:
			parts = append(parts, dimNames[i])
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", dimNames[i], e))
		}
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "*")
}

// Unit is a parsed unit: an exact scale num/den relative to the base
// dimensions.
type Unit struct {
	name string
	num  decimal.Decimal
	den  decimal.Decimal
	dims dims
}

// One is the dimensionless unit with scale 1.
var One = Unit{num: decimal.NewFromInt(1), den: decimal.NewFromInt(1)}

// Name returns the unit string the unit was parsed from.
func (u Unit) Name() string { return u.name }

// IsDimensionless reports whether u has no base dimension.
func (u Unit) IsDimensionless() bool { return u.dims == dims{} }

// Mul returns the product of u and o.
func (u Unit) Mul(o Unit) Unit {
	return Unit{
		name: joinName(u, o, "*"),
		num:  u.num.Mul(o.num),
		den:  u.den.Mul(o.den),
		dims: u.dims.add(o.dims),
	}
}

// Div returns the quotient of u and o.
func (u Unit) Div(o Unit) Unit {
	return Unit{
		name: joinName(u, o, "/"),
		num:  u.num.Mul(o.den),
		den:  u.den.Mul(o.num),
		dims: u.dims.sub(o.dims),
	}
}

func joinName(u, o Unit, op string) string {
	switch {
	case o.name == "":
		return u.name
	case u.name == "":
		if op == "*" {
			return o.name
		}
		return "1/" + o.name
	}
	return u.name + op + o.name
}

// Factor returns the number a value in from must be multiplied with to be
// expressed in to.
func Factor(from, to Unit) (float64, error) {
	if from.dims != to.dims {
		return 0, fmt.Errorf("%w: cannot convert %q (%s) to %q (%s)", ErrIncompatible, from.name, from.dims, to.name, to.dims)
	}
	r := new(big.Rat).Quo(
		from.num.Mul(to.den).Rat(),
		from.den.Mul(to.num).Rat(),
	)
	f, _ := r.Float64()
	return f, nil
}

// Parse parses a unit string such as "MW", "1000*m3" or "EUR/MWh".
func Parse(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unit{}, ErrEmptyUnit
	}

	result := One
	op := byte('*')
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '*' && s[i] != '/' {
			continue
		}
		tok, err := parseToken(strings.TrimSpace(s[start:i]))
		if err != nil {
			return Unit{}, fmt.Errorf("%w in %q", err, s)
		}
		if op == '*' {
			result = result.Mul(tok)
		} else {
			result = result.Div(tok)
		}
		if i < len(s) {
			op = s[i]
		}
		start = i + 1
	}
	result.name = s
	return result, nil
}

func parseToken(tok string) (Unit, error) {
	if tok == "" {
		return Unit{}, fmt.Errorf("%w: empty token", ErrUnknownUnit)
	}
	if u, ok := atoms[tok]; ok {
		u.name = tok
		return u, nil
	}
	if n, err := decimal.NewFromString(tok); err == nil {
		if n.IsZero() {
			return Unit{}, fmt.Errorf("%w: zero multiplier", ErrUnknownUnit)
		}
		return Unit{num: n, den: decimal.NewFromInt(1)}, nil
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, tok)
}

func atom(scale string, d int) Unit {
	var ds dims
	ds[d] = 1
	return Unit{num: decimal.RequireFromString(scale), den: decimal.NewFromInt(1), dims: ds}
}

func energy(scale string) Unit {
	var ds dims
	ds[dimPower] = 1
	ds[dimTime] = 1
	return Unit{num: decimal.RequireFromString(scale).Mul(decimal.NewFromInt(3600)), den: decimal.NewFromInt(1), dims: ds}
}

var atoms = map[string]Unit{
	"W":  atom("1", dimPower),
	"kW": atom("1e3", dimPower),
	"MW": atom("1e6", dimPower),
	"GW": atom("1e9", dimPower),
	"TW": atom("1e12", dimPower),

	"Wh":  energy("1"),
	"kWh": energy("1e3"),
	"MWh": energy("1e6"),
	"GWh": energy("1e9"),
	"TWh": energy("1e12"),

	"s":     atom("1", dimTime),
	"min":   atom("60", dimTime),
	"h":     atom("3600", dimTime),
	"hour":  atom("3600", dimTime),
	"hours": atom("3600", dimTime),
	"day":   atom("86400", dimTime),
	"days":  atom("86400", dimTime),
	"week":  atom("604800", dimTime),
	"weeks": atom("604800", dimTime),

	"m3":  atom("1", dimVolume),
	"Mm3": atom("1e6", dimVolume),

	"EUR":  atom("1", dimCurrency),
	"kEUR": atom("1e3", dimCurrency),
	"MEUR": atom("1e6", dimCurrency),

	"t":  atom("1", dimMass),
	"kt": atom("1e3", dimMass),
	"Mt": atom("1e6", dimMass),
}
