package resolve

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/timevector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileVector_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	e := refOf(t, "x", profile)
	db := querydb.NewModelDB(newModel(t, nil))

	_, err := GetProfileVector(ctx, nil, db, modelYear(), profileIndex(t), true, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = GetProfileVector(ctx, e, nil, modelYear(), profileIndex(t), true, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = GetProfileVector(ctx, e, db, nil, profileIndex(t), true, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = GetProfileVector(ctx, e, db, modelYear(), nil, true, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetProfileVector_Leaf(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{"profile_tv": profileTV(t, 0.5)}))

	vector, err := getProfile(t, refOf(t, "profile_tv", profile), db, true)
	require.NoError(t, err)
	assert.Len(t, vector, profileIndex(t).NumPeriods())
	assertAll(t, 0.5, vector)
}

func TestGetProfileVector_TimeVectorSource(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, nil))

	vector, err := getProfile(t, vectorOf(t, profileTV(t, 0.4), profile), db, true)
	require.NoError(t, err)
	assertAll(t, 0.4, vector)
}

func TestGetProfileVector_Sum(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{
		"profile_tv_1": profileTV(t, 0.3),
		"profile_tv_2": profileTV(t, 0.7),
		"profile_tv_3": profileTV(t, 0.5),
	}))
	sum := combine(t, refOf(t, "profile_tv_1", profile), expr.OpAdd, refOf(t, "profile_tv_2", profile))
	sum = combine(t, sum, expr.OpAdd, refOf(t, "profile_tv_3", profile))

	vector, err := getProfile(t, sum, db, true)
	require.NoError(t, err)
	assertAll(t, 1.5, vector)
}

func TestGetProfileVector_Factors(t *testing.T) {
	testCases := []struct {
		name     string
		build    func(t *testing.T, p *expr.Expr) *expr.Expr
		expected float64
	}{
		{
			name: "number",
			build: func(t *testing.T, p *expr.Expr) *expr.Expr {
				return combine(t, p, expr.OpMul, 2)
			},
			expected: 0.5,
		},
		{
			name: "divide by number",
			build: func(t *testing.T, p *expr.Expr) *expr.Expr {
				return combine(t, p, expr.OpDiv, 5)
			},
			expected: 0.05,
		},
		{
			name: "untyped reference",
			build: func(t *testing.T, p *expr.Expr) *expr.Expr {
				return combine(t, p, expr.OpMul, refOf(t, "three", expr.Tags{}))
			},
			expected: 0.75,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := querydb.NewModelDB(newModel(t, map[string]any{
				"profile_tv": profileTV(t, 0.25),
				"three":      levelTV(t, 3, ""),
			}))
			vector, err := getProfile(t, tc.build(t, refOf(t, "profile_tv", profile)), db, true)
			require.NoError(t, err)
			assertAll(t, tc.expected, vector)
		})
	}
}

func TestGetProfileVector_NestedExpr(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{
		"profile_tv": profileTV(t, 0.6),
		"inner_expr": refOf(t, "profile_tv", profile),
	}))

	vector, err := getProfile(t, refOf(t, "inner_expr", profile), db, true)
	require.NoError(t, err)
	assertAll(t, 0.6, vector)
}

func TestGetProfileVector_Polarity(t *testing.T) {
	testCases := []struct {
		name      string
		tv        timevector.TimeVector
		isZeroOne bool
		even, odd float64
	}{
		{"zero-one to mean-one", alternating(t, 0, 1, timevector.ZeroOneProfile()), false, 0, 2},
		{"mean-one to zero-one", alternating(t, 0, 2, timevector.MeanOneProfile()), true, 0, 1},
		{"zero-one kept", alternating(t, 0.2, 0.4, timevector.ZeroOneProfile()), true, 0.2, 0.4},
		{"all zero left as is", alternating(t, 0, 0, timevector.ZeroOneProfile()), false, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := querydb.NewModelDB(newModel(t, map[string]any{"p": tc.tv}))
			vector, err := getProfile(t, refOf(t, "p", profile), db, tc.isZeroOne)
			require.NoError(t, err)
			assert.InDelta(t, tc.even, vector[0], 1e-12)
			assert.InDelta(t, tc.odd, vector[1], 1e-12)
			assert.InDelta(t, tc.even, vector[len(vector)-2], 1e-12)
		})
	}
}

func TestGetProfileVector_Float32(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{"p": profileTV(t, 0.1)}))

	vector, err := GetProfileVector(context.Background(), refOf(t, "p", profile), db, modelYear(), profileIndex(t), true, true)
	require.NoError(t, err)
	assert.Equal(t, float64(float32(0.1)), vector[0])
	assert.NotEqual(t, 0.1, vector[0])
}

func TestGetProfileVector_Subtraction(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{
		"profile_tv_1": profileTV(t, 0.3),
		"profile_tv_2": profileTV(t, 0.7),
	}))
	diff := combine(t, refOf(t, "profile_tv_2", profile), expr.OpSub, refOf(t, "profile_tv_1", profile))

	_, err := getProfile(t, combine(t, diff, expr.OpMul, 2), db, true)
	require.ErrorIs(t, err, ErrInvalidExpr)
	assert.Contains(t, err.Error(), "Expected")
}

func TestGetProfileVector_NonProfileLeaf(t *testing.T) {
	db := querydb.NewModelDB(newModel(t, map[string]any{
		"none_profile_expr": vectorOf(t, profileTV(t, 0.4), expr.Tags{}),
	}))

	_, err := getProfile(t, refOf(t, "none_profile_expr", profile), db, true)
	require.ErrorIs(t, err, ErrInvalidExpr)
	assert.Regexp(t, `Expected .+? to be is_profile=True\.`, err.Error())
}

func TestGetProfileVector_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		build  func(t *testing.T) *expr.Expr
		target error
	}{
		{
			name: "level root",
			build: func(t *testing.T) *expr.Expr {
				return refOf(t, "cap", level)
			},
			target: ErrInvalidExpr,
		},
		{
			name: "level factor",
			build: func(t *testing.T) *expr.Expr {
				return combine(t, refOf(t, "p", profile), expr.OpMul, refOf(t, "cap", expr.Tags{Level: true}))
			},
			target: ErrInvalidExpr,
		},
		{
			name: "untyped divisor",
			build: func(t *testing.T) *expr.Expr {
				return combine(t, refOf(t, "p", profile), expr.OpDiv, refOf(t, "cap", expr.Tags{}))
			},
			target: nil,
		},
		{
			name: "divide by zero",
			build: func(t *testing.T) *expr.Expr {
				return combine(t, refOf(t, "p", profile), expr.OpDiv, refOf(t, "zero", expr.Tags{}))
			},
			target: ErrDivisionByZero,
		},
		{
			name: "level time vector",
			build: func(t *testing.T) *expr.Expr {
				return refOf(t, "cap", profile)
			},
			target: ErrInvalidExpr,
		},
		{
			name: "curve",
			build: func(t *testing.T) *expr.Expr {
				return refOf(t, "curve", profile)
			},
			target: ErrUnsupported,
		},
		{
			name: "missing key",
			build: func(t *testing.T) *expr.Expr {
				return refOf(t, "missing", profile)
			},
			target: querydb.ErrNotFound,
		},
		{
			name: "mixed precedence behind a reference",
			build: func(t *testing.T) *expr.Expr {
				return combine(t, refOf(t, "p", profile), expr.OpMul, refOf(t, "stored", profile))
			},
			target: expr.ErrInvalidOperations,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := querydb.NewModelDB(newModel(t, map[string]any{
				"p":      profileTV(t, 0.5),
				"cap":    levelTV(t, 2, "MW"),
				"zero":   levelTV(t, 0, ""),
				"curve":  &curve.LoadedCurve{},
				"stored": operation(t, "+*", profile, refOf(t, "p", profile), refOf(t, "p", profile), refOf(t, "p", profile)),
			}))
			_, err := getProfile(t, tc.build(t), db, true)
			if tc.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.target)
		})
	}
}
