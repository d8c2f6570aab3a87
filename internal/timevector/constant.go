package timevector

import (
	"context"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

// ConstantTimeVector is a single value valid at all times.
type ConstantTimeVector struct {
	scalar   float64
	unit     string
	polarity Polarity
	ref      *timeindex.ReferencePeriod
}

var _ TimeVector = (*ConstantTimeVector)(nil)

// NewConstantTimeVector returns a constant. A mean-one profile without a
// reference period gets the period of the constant time index; a zero-one
// profile never has one.
func NewConstantTimeVector(scalar float64, unit string, polarity Polarity, ref *timeindex.ReferencePeriod) (*ConstantTimeVector, error) {
	if err := polarity.Validate("ConstantTimeVector"); err != nil {
		return nil, err
	}
	if polarity.IsProfile() {
		if *polarity.IsZeroOneProfile {
			ref = nil
		} else if ref == nil {
			ref = timeindex.ConstantTimeIndex().ReferencePeriod()
		}
	}
	return &ConstantTimeVector{scalar: scalar, unit: unit, polarity: polarity, ref: ref}, nil
}

func (c *ConstantTimeVector) Scalar() float64 { return c.scalar }

func (c *ConstantTimeVector) Vector(context.Context) ([]float64, error) {
	return []float64{c.scalar}, nil
}

func (c *ConstantTimeVector) TimeIndex(context.Context) (timeindex.TimeIndex, error) {
	return timeindex.ConstantTimeIndex(), nil
}

func (c *ConstantTimeVector) IsConstant() bool                           { return true }
func (c *ConstantTimeVector) Polarity() Polarity                         { return c.polarity }
func (c *ConstantTimeVector) Unit() string                               { return c.unit }
func (c *ConstantTimeVector) ReferencePeriod() *timeindex.ReferencePeriod { return c.ref }
func (c *ConstantTimeVector) Loader() loader.Loader                      { return nil }

// ExprString renders the constant as it appears in an expression, with its
// unit when it has one.
func (c *ConstantTimeVector) ExprString() string {
	if c.unit == "" {
		return formatScalar(c.scalar)
	}
	return formatScalar(c.scalar) + " " + c.unit
}

func (c *ConstantTimeVector) String() string { return c.ExprString() }

func (c *ConstantTimeVector) Equal(other TimeVector) bool {
	o, ok := other.(*ConstantTimeVector)
	if !ok || o == nil {
		return false
	}
	return c.scalar == o.scalar && c.unit == o.unit && c.polarity.Equal(o.polarity) && c.ref.Equal(o.ref)
}

func (c *ConstantTimeVector) Hash() uint64 {
	return newHasher("constant").float(c.scalar).str(c.unit).polarity(c.polarity).ref(c.ref).sum()
}
