package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/model"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/specialistvlad/gridexpr/internal/timevector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	level   = expr.Tags{Level: true}
	profile = expr.Tags{Profile: true}
)

func refOf(t *testing.T, key string, tags expr.Tags) *expr.Expr {
	t.Helper()
	e, err := expr.NewRef(key, tags)
	require.NoError(t, err)
	return e
}

func vectorOf(t *testing.T, tv timevector.TimeVector, tags expr.Tags) *expr.Expr {
	t.Helper()
	e, err := expr.NewVector(tv, tags)
	require.NoError(t, err)
	return e
}

func modelYear() *timeindex.SinglePeriodTimeIndex { return timeindex.ModelYear(2025) }

func profileIndex(t *testing.T) *timeindex.FixedFrequencyTimeIndex {
	t.Helper()
	ti, err := timeindex.ProfileTimeIndex(1981, 10, 24*time.Hour, true)
	require.NoError(t, err)
	return ti
}

func levelTV(t *testing.T, scalar float64, unit string) *timevector.ConstantTimeVector {
	t.Helper()
	tv, err := timevector.NewConstantTimeVector(scalar, unit, timevector.MaxLevel(), nil)
	require.NoError(t, err)
	return tv
}

func avgLevelTV(t *testing.T, scalar float64, unit string) *timevector.ConstantTimeVector {
	t.Helper()
	tv, err := timevector.NewConstantTimeVector(scalar, unit, timevector.AvgLevel(), nil)
	require.NoError(t, err)
	return tv
}

func profileTV(t *testing.T, scalar float64) *timevector.ConstantTimeVector {
	t.Helper()
	tv, err := timevector.NewConstantTimeVector(scalar, "", timevector.ZeroOneProfile(), nil)
	require.NoError(t, err)
	return tv
}

// alternating is a profile over the scenario horizon with values a, b, a, b...
func alternating(t *testing.T, a, b float64, polarity timevector.Polarity) *timevector.ListTimeVector {
	t.Helper()
	index := profileIndex(t)
	values := make([]float64, index.NumPeriods())
	for i := range values {
		values[i] = a
		if i%2 == 1 {
			values[i] = b
		}
	}
	tv, err := timevector.NewListTimeVector(index, values, "", polarity, nil)
	require.NoError(t, err)
	return tv
}

func newModel(t *testing.T, data map[string]any) *model.Model {
	t.Helper()
	m := model.New()
	for k, v := range data {
		require.NoError(t, m.Set(k, v))
	}
	return m
}

func operation(t *testing.T, ops string, tags expr.Tags, args ...*expr.Expr) *expr.Expr {
	t.Helper()
	e, err := expr.NewOperation(ops, args, tags)
	require.NoError(t, err)
	return e
}

func combine(t *testing.T, e *expr.Expr, op expr.Op, other any) *expr.Expr {
	t.Helper()
	out, err := e.Combine(op, other)
	require.NoError(t, err)
	return out
}

func getLevel(t *testing.T, e *expr.Expr, db querydb.QueryDB, unit string, isMax bool) (float64, error) {
	t.Helper()
	return GetLevelValue(context.Background(), e, db, unit, modelYear(), profileIndex(t), isMax)
}

func getProfile(t *testing.T, e *expr.Expr, db querydb.QueryDB, isZeroOne bool) ([]float64, error) {
	t.Helper()
	return GetProfileVector(context.Background(), e, db, modelYear(), profileIndex(t), isZeroOne, false)
}

func assertAll(t *testing.T, expected float64, vector []float64) {
	t.Helper()
	require.NotEmpty(t, vector)
	for i, v := range vector {
		if !assert.InDelta(t, expected, v, 1e-12, "index %d", i) {
			return
		}
	}
}
