// Package curve holds x/y relations such as reservoir or efficiency curves.
package curve

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/loader"
)

// Curve is a named relation between two axes.
type Curve interface {
	UniqueName() string
	XAxis(ctx context.Context) ([]float64, error)
	YAxis(ctx context.Context) ([]float64, error)
	XUnit() string
	YUnit() string
	Loader() loader.Loader
	Equal(other Curve) bool
	String() string
}

// LoadedCurve reads its axes through a loader. Units are read on creation.
type LoadedCurve struct {
	id     string
	loader loader.CurveLoader
	meta   loader.CurveMetadata
}

var _ Curve = (*LoadedCurve)(nil)

func NewLoadedCurve(ctx context.Context, curveID string, l loader.CurveLoader) (*LoadedCurve, error) {
	if l == nil {
		return nil, fmt.Errorf("curve %q requires a loader", curveID)
	}
	meta, err := l.CurveMetadata(ctx, curveID)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of curve %q: %w", curveID, err)
	}
	return &LoadedCurve{id: curveID, loader: l, meta: meta}, nil
}

func (c *LoadedCurve) UniqueName() string { return c.id }

func (c *LoadedCurve) XAxis(ctx context.Context) ([]float64, error) {
	return c.loader.XAxis(ctx, c.id)
}

func (c *LoadedCurve) YAxis(ctx context.Context) ([]float64, error) {
	return c.loader.YAxis(ctx, c.id)
}

func (c *LoadedCurve) XUnit() string         { return c.meta.XUnit }
func (c *LoadedCurve) YUnit() string         { return c.meta.YUnit }
func (c *LoadedCurve) Loader() loader.Loader { return c.loader }
func (c *LoadedCurve) String() string        { return fmt.Sprintf("LoadedCurve(%s)", c.id) }

func (c *LoadedCurve) Equal(other Curve) bool {
	o, ok := other.(*LoadedCurve)
	if !ok || o == nil {
		return false
	}
	return c.id == o.id && c.loader.ID() == o.loader.ID()
}
