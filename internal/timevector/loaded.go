package timevector

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

// LoadedTimeVector is a vector whose values are read through a loader when
// needed. Unit, polarity and reference period are read once, on creation.
type LoadedTimeVector struct {
	id       string
	loader   loader.TimeVectorLoader
	unit     string
	polarity Polarity
	ref      *timeindex.ReferencePeriod
}

var _ TimeVector = (*LoadedTimeVector)(nil)

func NewLoadedTimeVector(ctx context.Context, vectorID string, l loader.TimeVectorLoader) (*LoadedTimeVector, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: LoadedTimeVector %q requires a loader", ErrInvalidArgument, vectorID)
	}
	meta, err := l.Metadata(ctx, vectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of vector %q: %w", vectorID, err)
	}
	polarity := PolarityFromMetadata(meta)
	if err := polarity.Validate("LoadedTimeVector"); err != nil {
		return nil, err
	}
	return &LoadedTimeVector{
		id:       vectorID,
		loader:   l,
		unit:     meta.Unit,
		polarity: polarity,
		ref:      meta.ReferencePeriod,
	}, nil
}

func (l *LoadedTimeVector) VectorID() string { return l.id }

func (l *LoadedTimeVector) Vector(ctx context.Context) ([]float64, error) {
	return l.loader.Values(ctx, l.id)
}

func (l *LoadedTimeVector) TimeIndex(ctx context.Context) (timeindex.TimeIndex, error) {
	return l.loader.Index(ctx, l.id)
}

func (l *LoadedTimeVector) IsConstant() bool                           { return false }
func (l *LoadedTimeVector) Polarity() Polarity                         { return l.polarity }
func (l *LoadedTimeVector) Unit() string                               { return l.unit }
func (l *LoadedTimeVector) ReferencePeriod() *timeindex.ReferencePeriod { return l.ref }
func (l *LoadedTimeVector) Loader() loader.Loader                      { return l.loader }

func (l *LoadedTimeVector) String() string {
	return fmt.Sprintf("LoadedTimeVector(%s)", l.id)
}

// Equal compares vector ID and loader identity only.
func (l *LoadedTimeVector) Equal(other TimeVector) bool {
	o, ok := other.(*LoadedTimeVector)
	if !ok || o == nil {
		return false
	}
	return l.id == o.id && l.loader.ID() == o.loader.ID()
}

func (l *LoadedTimeVector) Hash() uint64 {
	return newHasher("loaded").str(l.id).str(l.loader.ID()).sum()
}
