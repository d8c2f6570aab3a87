package timevector

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

// LinearTransformTimeVector is another vector scaled and shifted, with its
// own unit and polarity.
type LinearTransformTimeVector struct {
	inner    TimeVector
	scale    float64
	shift    float64
	unit     string
	polarity Polarity
	ref      *timeindex.ReferencePeriod
}

var _ TimeVector = (*LinearTransformTimeVector)(nil)

func NewLinearTransformTimeVector(tv TimeVector, scale, shift float64, unit string, polarity Polarity, ref *timeindex.ReferencePeriod) (*LinearTransformTimeVector, error) {
	if err := polarity.Validate("LinearTransformTimeVector"); err != nil {
		return nil, err
	}
	if tv == nil {
		return nil, fmt.Errorf("%w: LinearTransformTimeVector requires a time vector", ErrInvalidArgument)
	}
	return &LinearTransformTimeVector{inner: tv, scale: scale, shift: shift, unit: unit, polarity: polarity, ref: ref}, nil
}

// Vector returns inner*scale + shift.
func (l *LinearTransformTimeVector) Vector(ctx context.Context) ([]float64, error) {
	values, err := l.inner.Vector(ctx)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = v*l.scale + l.shift
	}
	return values, nil
}

func (l *LinearTransformTimeVector) TimeIndex(ctx context.Context) (timeindex.TimeIndex, error) {
	return l.inner.TimeIndex(ctx)
}

func (l *LinearTransformTimeVector) Inner() TimeVector                          { return l.inner }
func (l *LinearTransformTimeVector) IsConstant() bool                           { return l.inner.IsConstant() }
func (l *LinearTransformTimeVector) Polarity() Polarity                         { return l.polarity }
func (l *LinearTransformTimeVector) Unit() string                               { return l.unit }
func (l *LinearTransformTimeVector) ReferencePeriod() *timeindex.ReferencePeriod { return l.ref }
func (l *LinearTransformTimeVector) Loader() loader.Loader                      { return l.inner.Loader() }

func (l *LinearTransformTimeVector) String() string {
	return fmt.Sprintf("LinearTransformTimeVector(%s * %s + %s)", l.inner, formatScalar(l.scale), formatScalar(l.shift))
}

func (l *LinearTransformTimeVector) Equal(other TimeVector) bool {
	o, ok := other.(*LinearTransformTimeVector)
	if !ok || o == nil {
		return false
	}
	return l.inner.Equal(o.inner) && l.scale == o.scale && l.shift == o.shift &&
		l.unit == o.unit && l.polarity.Equal(o.polarity) && l.ref.Equal(o.ref)
}

func (l *LinearTransformTimeVector) Hash() uint64 {
	return newHasher("linear").
		str(fmt.Sprint(l.inner.Hash())).
		float(l.scale).
		float(l.shift).
		str(l.unit).
		polarity(l.polarity).
		ref(l.ref).
		sum()
}
