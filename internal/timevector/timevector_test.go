package timevector

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/loader/inmemory"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b(v bool) *bool { return &v }

func invalidPolarities() []Polarity {
	return []Polarity{
		{},
		{IsMaxLevel: b(true), IsZeroOneProfile: b(true)},
		{IsMaxLevel: b(false), IsZeroOneProfile: b(false)},
		{IsMaxLevel: b(true), IsZeroOneProfile: b(false)},
		{IsMaxLevel: b(false), IsZeroOneProfile: b(true)},
	}
}

func mustRef(t *testing.T, start, n int) *timeindex.ReferencePeriod {
	t.Helper()
	rp, err := timeindex.NewReferencePeriod(start, n)
	require.NoError(t, err)
	return rp
}

func dailyIndex(t *testing.T) timeindex.TimeIndex {
	t.Helper()
	ti, err := timeindex.NewListTimeIndex([]time.Time{
		timeindex.ISODate(2021, 1, 1),
		timeindex.ISODate(2021, 1, 2),
		timeindex.ISODate(2021, 1, 3),
		timeindex.ISODate(2021, 1, 4),
	}, false, false, false)
	require.NoError(t, err)
	return ti
}

func TestInvalidPolarity(t *testing.T) {
	ctx := context.Background()
	for _, p := range invalidPolarities() {
		t.Run(p.String(), func(t *testing.T) {
			_, err := NewConstantTimeVector(1, "MW", p, nil)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), "Invalid input arguments for ConstantTimeVector")

			_, err = NewListTimeVector(dailyIndex(t), []float64{1, 2, 3}, "", p, nil)
			assert.Contains(t, err.Error(), "Invalid input arguments for ListTimeVector")

			base, err := NewConstantTimeVector(1, "MW", MaxLevel(), nil)
			require.NoError(t, err)
			_, err = NewLinearTransformTimeVector(base, 2, 1, "", p, nil)
			assert.Contains(t, err.Error(), "Invalid input arguments for LinearTransformTimeVector")

			store := inmemory.New()
			// bypass the store's own validation to test the vector's
			_, err = NewLoadedTimeVector(ctx, "v", fakeLoader{store, loader.VectorMetadata{IsMaxLevel: p.IsMaxLevel, IsZeroOneProfile: p.IsZeroOneProfile}})
			assert.Contains(t, err.Error(), "Invalid input arguments for LoadedTimeVector")
		})
	}
}

// fakeLoader serves fixed metadata for every id.
type fakeLoader struct {
	*inmemory.Store
	meta loader.VectorMetadata
}

func (f fakeLoader) Metadata(context.Context, string) (loader.VectorMetadata, error) { return f.meta, nil }

func TestConstantTimeVector(t *testing.T) {
	ctx := context.Background()

	level, err := NewConstantTimeVector(1, "MW", MaxLevel(), nil)
	require.NoError(t, err)
	assert.Equal(t, "MW", level.Unit())
	assert.True(t, level.Polarity().IsLevel())
	assert.True(t, *level.Polarity().IsMaxLevel)
	assert.Nil(t, level.Polarity().IsZeroOneProfile)
	assert.True(t, level.IsConstant())
	assert.Nil(t, level.Loader())

	v, err := level.Vector(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, v)

	idx, err := level.TimeIndex(ctx)
	require.NoError(t, err)
	assert.True(t, idx.Equal(timeindex.ConstantTimeIndex()))

	profile, err := NewConstantTimeVector(1, "MW", ZeroOneProfile(), nil)
	require.NoError(t, err)
	assert.True(t, profile.Polarity().IsProfile())
	assert.Nil(t, profile.Polarity().IsMaxLevel)
}

func TestConstantTimeVector_ReferencePeriod(t *testing.T) {
	rp := mustRef(t, 2020, 1)

	level, err := NewConstantTimeVector(1, "MW", AvgLevel(), rp)
	require.NoError(t, err)
	assert.True(t, rp.Equal(level.ReferencePeriod()))

	noRef, err := NewConstantTimeVector(1, "MW", AvgLevel(), nil)
	require.NoError(t, err)
	assert.Nil(t, noRef.ReferencePeriod())

	meanOne, err := NewConstantTimeVector(1, "", MeanOneProfile(), nil)
	require.NoError(t, err)
	assert.True(t, mustRef(t, 1985, 1).Equal(meanOne.ReferencePeriod()))

	zeroOne, err := NewConstantTimeVector(1, "", ZeroOneProfile(), rp)
	require.NoError(t, err)
	assert.Nil(t, zeroOne.ReferencePeriod())
}

func TestConstantTimeVector_EqualAndHash(t *testing.T) {
	base := func(t *testing.T) *ConstantTimeVector {
		v, err := NewConstantTimeVector(1, "MW", MaxLevel(), nil)
		require.NoError(t, err)
		return v
	}

	testCases := []struct {
		name     string
		scalar   float64
		unit     string
		polarity Polarity
		ref      *timeindex.ReferencePeriod
		expected bool
	}{
		{name: "same", scalar: 1, unit: "MW", polarity: MaxLevel(), expected: true},
		{name: "different scalar", scalar: 2, unit: "MW", polarity: MaxLevel()},
		{name: "different unit", scalar: 1, unit: "kW", polarity: MaxLevel()},
		{name: "different level kind", scalar: 1, unit: "MW", polarity: AvgLevel()},
		{name: "profile", scalar: 1, unit: "MW", polarity: ZeroOneProfile()},
		{name: "different reference period", scalar: 1, unit: "MW", polarity: MaxLevel(), ref: mustRef(t, 2021, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewConstantTimeVector(tc.scalar, tc.unit, tc.polarity, tc.ref)
			require.NoError(t, err)
			v := base(t)
			assert.Equal(t, tc.expected, v.Equal(other))
			assert.Equal(t, tc.expected, v.Hash() == other.Hash())
		})
	}

	t.Run("signed zero", func(t *testing.T) {
		zero, err := NewConstantTimeVector(0, "MW", MaxLevel(), nil)
		require.NoError(t, err)
		negZero, err := NewConstantTimeVector(math.Copysign(0, -1), "MW", MaxLevel(), nil)
		require.NoError(t, err)
		assert.True(t, zero.Equal(negZero))
		assert.Equal(t, zero.Hash(), negZero.Hash())
	})

	t.Run("other kind", func(t *testing.T) {
		list, err := NewListTimeVector(timeindex.ConstantTimeIndex(), []float64{1}, "MW", MaxLevel(), nil)
		require.NoError(t, err)
		assert.False(t, base(t).Equal(list))
	})

	t.Run("as map key", func(t *testing.T) {
		seen := map[uint64]*ConstantTimeVector{}
		for _, s := range []float64{1, 2} {
			v, err := NewConstantTimeVector(s, "MW", MaxLevel(), nil)
			require.NoError(t, err)
			seen[v.Hash()] = v
		}
		found, ok := seen[base(t).Hash()]
		require.True(t, ok)
		assert.True(t, found.Equal(base(t)))

		three, err := NewConstantTimeVector(3, "MW", MaxLevel(), nil)
		require.NoError(t, err)
		assert.NotContains(t, seen, three.Hash())
	})
}

func TestConstantTimeVector_ExprString(t *testing.T) {
	withUnit, err := NewConstantTimeVector(3.5, "MW", ZeroOneProfile(), nil)
	require.NoError(t, err)
	assert.Equal(t, "3.5 MW", withUnit.ExprString())

	noUnit, err := NewConstantTimeVector(3.5, "", ZeroOneProfile(), nil)
	require.NoError(t, err)
	assert.Equal(t, "3.5", noUnit.ExprString())
}

func TestListTimeVector(t *testing.T) {
	ctx := context.Background()
	idx := dailyIndex(t)

	v, err := NewListTimeVector(idx, []float64{2, 3, 4}, "", MaxLevel(), nil)
	require.NoError(t, err)

	got, err := v.Vector(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, got)
	got[0] = 100
	again, err := v.Vector(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, again[0])

	assert.False(t, v.IsConstant())
	assert.Nil(t, v.Loader())

	same, err := NewListTimeVector(idx, []float64{2, 3, 4}, "", MaxLevel(), nil)
	require.NoError(t, err)
	assert.True(t, v.Equal(same))
	assert.Equal(t, v.Hash(), same.Hash())

	_, err = NewListTimeVector(idx, []float64{1, 2}, "", MaxLevel(), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "Vector shape (2,) does not match number of periods 3 of timeindex")
}

func TestLinearTransformTimeVector(t *testing.T) {
	ctx := context.Background()
	base, err := NewListTimeVector(dailyIndex(t), []float64{2, 3, 4}, "", MaxLevel(), nil)
	require.NoError(t, err)

	testCases := []struct {
		scale, shift float64
		expected     []float64
	}{
		{1, 0, []float64{2, 3, 4}},
		{2, 0, []float64{4, 6, 8}},
		{1, 1, []float64{3, 4, 5}},
		{2, 1, []float64{5, 7, 9}},
	}
	for _, tc := range testCases {
		v, err := NewLinearTransformTimeVector(base, tc.scale, tc.shift, "", MaxLevel(), nil)
		require.NoError(t, err)
		got, err := v.Vector(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got)
	}

	// the inner vector is left untouched
	inner, err := base.Vector(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, inner)

	v, err := NewLinearTransformTimeVector(base, 2, 1, "MW", ZeroOneProfile(), nil)
	require.NoError(t, err)
	assert.Equal(t, "MW", v.Unit())
	assert.True(t, v.Polarity().IsProfile())
	assert.Nil(t, v.ReferencePeriod())
	assert.Nil(t, v.Loader())
	assert.False(t, v.IsConstant())

	idx, err := v.TimeIndex(ctx)
	require.NoError(t, err)
	assert.True(t, idx.Equal(dailyIndex(t)))

	constant, err := NewConstantTimeVector(1, "MW", MaxLevel(), nil)
	require.NoError(t, err)
	onConstant, err := NewLinearTransformTimeVector(constant, 2, 1, "MW", MaxLevel(), nil)
	require.NoError(t, err)
	assert.True(t, onConstant.IsConstant())
}

func TestLoadedTimeVector(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	rp := mustRef(t, 2020, 1)
	idx, err := timeindex.WeeklyIndex(2020, 1, true)
	require.NoError(t, err)
	values := make([]float64, 52)
	values[0] = 2

	require.NoError(t, store.PutVector("level", idx, values, loader.VectorMetadata{Unit: "MW", IsMaxLevel: b(true), ReferencePeriod: rp}))
	require.NoError(t, store.PutVector("profile", idx, values, loader.VectorMetadata{Unit: "MW", IsZeroOneProfile: b(true), ReferencePeriod: rp}))

	level, err := NewLoadedTimeVector(ctx, "level", store)
	require.NoError(t, err)
	assert.True(t, *level.Polarity().IsMaxLevel)
	assert.Nil(t, level.Polarity().IsZeroOneProfile)
	assert.Equal(t, store.ID(), level.Loader().ID())
	assert.Equal(t, "MW", level.Unit())
	assert.True(t, rp.Equal(level.ReferencePeriod()))
	assert.False(t, level.IsConstant())

	got, err := level.Vector(ctx)
	require.NoError(t, err)
	assert.Equal(t, values, got)
	gotIdx, err := level.TimeIndex(ctx)
	require.NoError(t, err)
	assert.True(t, idx.Equal(gotIdx))

	profile, err := NewLoadedTimeVector(ctx, "profile", store)
	require.NoError(t, err)
	assert.True(t, *profile.Polarity().IsZeroOneProfile)

	_, err = NewLoadedTimeVector(ctx, "missing", store)
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestLoadedTimeVector_Equal(t *testing.T) {
	ctx := context.Background()
	idx := timeindex.ConstantTimeIndex()
	meta := loader.VectorMetadata{IsZeroOneProfile: b(true)}

	store := inmemory.New()
	require.NoError(t, store.PutVector("vector_1", idx, []float64{1}, meta))
	require.NoError(t, store.PutVector("vector_2", idx, []float64{1}, meta))
	other := inmemory.New()
	require.NoError(t, other.PutVector("vector_1", idx, []float64{1}, meta))

	v1, err := NewLoadedTimeVector(ctx, "vector_1", store)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		id       string
		store    *inmemory.Store
		expected bool
	}{
		{name: "same id same loader", id: "vector_1", store: store, expected: true},
		{name: "different id", id: "vector_2", store: store},
		{name: "different loader", id: "vector_1", store: other},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v2, err := NewLoadedTimeVector(ctx, tc.id, tc.store)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v1.Equal(v2))
			assert.Equal(t, tc.expected, v1.Hash() == v2.Hash())
		})
	}
}
