// Package inmemory provides a thread-safe, in-memory implementation of the
// loader interfaces. It is suitable for tests and for data generated at
// runtime that does not need to be persisted.
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

type vectorEntry struct {
	values []float64
	index  timeindex.TimeIndex
	meta   loader.VectorMetadata
}

type curveEntry struct {
	x, y []float64
	meta loader.CurveMetadata
}

// Store keeps vectors and curves in two independent sync.Maps keyed by ID.
type Store struct {
	id      string
	vectors sync.Map // Key: vector ID, Value: vectorEntry
	curves  sync.Map // Key: curve ID, Value: curveEntry
}

var (
	_ loader.TimeVectorLoader = (*Store)(nil)
	_ loader.CurveLoader      = (*Store)(nil)
)

// New creates an empty store with a fresh loader ID.
func New() *Store {
	return &Store{id: uuid.NewString()}
}

func (s *Store) ID() string { return s.id }

// PutVector stores values over index under id, replacing any previous entry.
func (s *Store) PutVector(id string, index timeindex.TimeIndex, values []float64, meta loader.VectorMetadata) error {
	if index == nil {
		return fmt.Errorf("inmemory: vector %q has no time index", id)
	}
	if len(values) != index.NumPeriods() {
		return fmt.Errorf("inmemory: vector %q has %d values for %d periods", id, len(values), index.NumPeriods())
	}
	if (meta.IsMaxLevel == nil) == (meta.IsZeroOneProfile == nil) {
		return fmt.Errorf("inmemory: vector %q must be either a level or a profile", id)
	}
	s.vectors.Store(id, vectorEntry{values: slices.Clone(values), index: index, meta: meta})
	return nil
}

// PutCurve stores a curve under id, replacing any previous entry.
func (s *Store) PutCurve(id string, x, y []float64, meta loader.CurveMetadata) error {
	if len(x) != len(y) {
		return fmt.Errorf("inmemory: curve %q has %d x values and %d y values", id, len(x), len(y))
	}
	s.curves.Store(id, curveEntry{x: slices.Clone(x), y: slices.Clone(y), meta: meta})
	return nil
}

func (s *Store) vector(id string) (vectorEntry, error) {
	v, ok := s.vectors.Load(id)
	if !ok {
		return vectorEntry{}, fmt.Errorf("%w: vector %q", loader.ErrNotFound, id)
	}
	return v.(vectorEntry), nil
}

func (s *Store) curve(id string) (curveEntry, error) {
	c, ok := s.curves.Load(id)
	if !ok {
		return curveEntry{}, fmt.Errorf("%w: curve %q", loader.ErrNotFound, id)
	}
	return c.(curveEntry), nil
}

// Values returns a copy of the stored values.
func (s *Store) Values(_ context.Context, id string) ([]float64, error) {
	v, err := s.vector(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.values), nil
}

func (s *Store) Index(_ context.Context, id string) (timeindex.TimeIndex, error) {
	v, err := s.vector(id)
	if err != nil {
		return nil, err
	}
	return v.index, nil
}

func (s *Store) Metadata(_ context.Context, id string) (loader.VectorMetadata, error) {
	v, err := s.vector(id)
	if err != nil {
		return loader.VectorMetadata{}, err
	}
	return v.meta, nil
}

func (s *Store) XAxis(_ context.Context, id string) ([]float64, error) {
	c, err := s.curve(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.x), nil
}

func (s *Store) YAxis(_ context.Context, id string) ([]float64, error) {
	c, err := s.curve(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.y), nil
}

func (s *Store) CurveMetadata(_ context.Context, id string) (loader.CurveMetadata, error) {
	c, err := s.curve(id)
	if err != nil {
		return loader.CurveMetadata{}, err
	}
	return c.meta, nil
}
