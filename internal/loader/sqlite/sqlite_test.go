package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data.sqlite"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("", 0)
	assert.Error(t, err)
}

func TestFixedFrequencyVectorRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	idx, err := timeindex.WeeklyIndex(2021, 1, true)
	require.NoError(t, err)
	values := make([]float64, 52)
	for i := range values {
		values[i] = float64(i) / 10
	}
	yes := true
	rp, err := timeindex.NewReferencePeriod(2021, 1)
	require.NoError(t, err)
	meta := loader.VectorMetadata{Unit: "MW", IsMaxLevel: &yes, ReferencePeriod: rp}

	require.NoError(t, s.PutVector(ctx, "wind", idx, values, meta))

	got, err := s.Values(ctx, "wind")
	require.NoError(t, err)
	assert.Equal(t, values, got)

	gotIdx, err := s.Index(ctx, "wind")
	require.NoError(t, err)
	assert.True(t, idx.Equal(gotIdx), "expected %v, got %v", idx, gotIdx)

	gotMeta, err := s.Metadata(ctx, "wind")
	require.NoError(t, err)
	assert.Equal(t, "MW", gotMeta.Unit)
	require.NotNil(t, gotMeta.IsMaxLevel)
	assert.True(t, *gotMeta.IsMaxLevel)
	assert.Nil(t, gotMeta.IsZeroOneProfile)
	assert.True(t, rp.Equal(gotMeta.ReferencePeriod))
}

func TestListVectorRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	bounds := []time.Time{timeindex.ISODate(2021, 1, 1), timeindex.ISODate(2021, 2, 1), timeindex.ISODate(2021, 4, 1)}
	idx, err := timeindex.NewListTimeIndex(bounds, false, true, false)
	require.NoError(t, err)
	no := false
	require.NoError(t, s.PutVector(ctx, "inflow", idx, []float64{5, 7}, loader.VectorMetadata{IsZeroOneProfile: &no}))

	gotIdx, err := s.Index(ctx, "inflow")
	require.NoError(t, err)
	assert.True(t, idx.Equal(gotIdx))

	gotMeta, err := s.Metadata(ctx, "inflow")
	require.NoError(t, err)
	assert.Nil(t, gotMeta.ReferencePeriod)
	require.NotNil(t, gotMeta.IsZeroOneProfile)
	assert.False(t, *gotMeta.IsZeroOneProfile)
}

func TestPutVector_ReplacesAndInvalidatesCache(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	idx := timeindex.ConstantTimeIndex()
	yes := true

	require.NoError(t, s.PutVector(ctx, "price", idx, []float64{40}, loader.VectorMetadata{Unit: "EUR/MWh", IsMaxLevel: &yes}))
	got, err := s.Values(ctx, "price")
	require.NoError(t, err)
	assert.Equal(t, []float64{40}, got)

	require.NoError(t, s.PutVector(ctx, "price", idx, []float64{55}, loader.VectorMetadata{Unit: "EUR/MWh", IsMaxLevel: &yes}))
	got, err = s.Values(ctx, "price")
	require.NoError(t, err)
	assert.Equal(t, []float64{55}, got)
}

func TestPutVector_Invalid(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	yes := true

	assert.Error(t, s.PutVector(ctx, "a", nil, nil, loader.VectorMetadata{IsMaxLevel: &yes}))
	assert.Error(t, s.PutVector(ctx, "a", timeindex.ConstantTimeIndex(), []float64{1, 2}, loader.VectorMetadata{IsMaxLevel: &yes}))
	assert.Error(t, s.PutVector(ctx, "a", timeindex.ConstantTimeIndex(), []float64{1}, loader.VectorMetadata{}))
}

func TestCurveRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCurve(ctx, "head", []float64{0, 5, 10}, []float64{100, 90, 70}, loader.CurveMetadata{XUnit: "m3/s", YUnit: "MW"}))

	x, err := s.XAxis(ctx, "head")
	require.NoError(t, err)
	y, err := s.YAxis(ctx, "head")
	require.NoError(t, err)
	meta, err := s.CurveMetadata(ctx, "head")
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5, 10}, x)
	assert.Equal(t, []float64{100, 90, 70}, y)
	assert.Equal(t, loader.CurveMetadata{XUnit: "m3/s", YUnit: "MW"}, meta)

	assert.Error(t, s.PutCurve(ctx, "bad", []float64{1}, nil, loader.CurveMetadata{}))
}

func TestNotFound(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Values(ctx, "missing")
	assert.ErrorIs(t, err, loader.ErrNotFound)
	_, err = s.YAxis(ctx, "missing")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sqlite")
	ctx := context.Background()
	yes := true

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.PutVector(ctx, "v", timeindex.ConstantTimeIndex(), []float64{3}, loader.VectorMetadata{IsMaxLevel: &yes}))
	require.NoError(t, s.Close())

	reopened, err := Open(path, 0)
	require.NoError(t, err)
	defer reopened.Close()
	assert.NotEqual(t, s.ID(), reopened.ID())

	got, err := reopened.Values(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, got)

	// stored as fixed frequency, read back as such
	idx, err := reopened.Index(ctx, "v")
	require.NoError(t, err)
	assert.True(t, idx.IsConstant())
}
