package timevector

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

// ListTimeVector holds its values in memory.
type ListTimeVector struct {
	index    timeindex.TimeIndex
	values   []float64
	unit     string
	polarity Polarity
	ref      *timeindex.ReferencePeriod
}

var _ TimeVector = (*ListTimeVector)(nil)

func NewListTimeVector(index timeindex.TimeIndex, values []float64, unit string, polarity Polarity, ref *timeindex.ReferencePeriod) (*ListTimeVector, error) {
	if err := polarity.Validate("ListTimeVector"); err != nil {
		return nil, err
	}
	if index == nil {
		return nil, fmt.Errorf("%w: ListTimeVector requires a time index", ErrInvalidArgument)
	}
	if len(values) != index.NumPeriods() {
		return nil, fmt.Errorf("%w: Vector shape (%d,) does not match number of periods %d of timeindex",
			ErrInvalidArgument, len(values), index.NumPeriods())
	}
	return &ListTimeVector{
		index:    index,
		values:   slices.Clone(values),
		unit:     unit,
		polarity: polarity,
		ref:      ref,
	}, nil
}

func (l *ListTimeVector) Vector(context.Context) ([]float64, error) {
	return slices.Clone(l.values), nil
}

func (l *ListTimeVector) TimeIndex(context.Context) (timeindex.TimeIndex, error) {
	return l.index, nil
}

func (l *ListTimeVector) IsConstant() bool                           { return l.index.IsConstant() }
func (l *ListTimeVector) Polarity() Polarity                         { return l.polarity }
func (l *ListTimeVector) Unit() string                               { return l.unit }
func (l *ListTimeVector) ReferencePeriod() *timeindex.ReferencePeriod { return l.ref }
func (l *ListTimeVector) Loader() loader.Loader                      { return nil }

func (l *ListTimeVector) String() string {
	return fmt.Sprintf("ListTimeVector(n=%d, unit=%q)", len(l.values), l.unit)
}

func (l *ListTimeVector) Equal(other TimeVector) bool {
	o, ok := other.(*ListTimeVector)
	if !ok || o == nil {
		return false
	}
	return l.index.Equal(o.index) && slices.Equal(l.values, o.values) &&
		l.unit == o.unit && l.polarity.Equal(o.polarity) && l.ref.Equal(o.ref)
}

func (l *ListTimeVector) Hash() uint64 {
	h := newHasher("list").str(l.unit).polarity(l.polarity).ref(l.ref)
	for _, t := range l.index.DatetimeList() {
		h.str(t.UTC().String())
	}
	for _, v := range l.values {
		h.float(v)
	}
	return h.sum()
}
