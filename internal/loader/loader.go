// Package loader defines how time vectors and curves that live outside the
// model are fetched.
//
// # Why Loaders Exist
//
// Model files only name the data they use. The values themselves sit in an
// external store (a SQLite file, an in-memory table in tests) and are read on
// demand by timevector.LoadedTimeVector and curve.LoadedCurve. A loader hands
// out values by ID and reports the metadata the expression layer needs before
// any values are read: unit, level/profile polarity and reference period.
//
// # Identity
//
// Every loader carries an ID that is unique for the lifetime of the process.
// Loaded vectors compare equal only if both their vector ID and their loader
// ID match, so two stores holding the same IDs never alias each other.
package loader

import (
	"context"
	"errors"

	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

// ErrNotFound is returned when a loader has no data under the requested ID.
var ErrNotFound = errors.New("loader: id not found")

// Loader is the common part of all loaders.
type Loader interface {
	ID() string
}

// VectorMetadata describes a stored time vector. Exactly one of IsMaxLevel
// and IsZeroOneProfile is set.
type VectorMetadata struct {
	Unit             string
	IsMaxLevel       *bool
	IsZeroOneProfile *bool
	ReferencePeriod  *timeindex.ReferencePeriod
}

// TimeVectorLoader reads stored time vectors.
type TimeVectorLoader interface {
	Loader
	Values(ctx context.Context, vectorID string) ([]float64, error)
	Index(ctx context.Context, vectorID string) (timeindex.TimeIndex, error)
	Metadata(ctx context.Context, vectorID string) (VectorMetadata, error)
}

// CurveMetadata holds the units of a stored curve's axes.
type CurveMetadata struct {
	XUnit string
	YUnit string
}

// CurveLoader reads stored curves.
type CurveLoader interface {
	Loader
	XAxis(ctx context.Context, curveID string) ([]float64, error)
	YAxis(ctx context.Context, curveID string) ([]float64, error)
	CurveMetadata(ctx context.Context, curveID string) (CurveMetadata, error)
}

// Set is a collection of distinct loaders.
type Set map[string]Loader

// Add records l under its ID.
func (s Set) Add(l Loader) {
	if l != nil {
		s[l.ID()] = l
	}
}
