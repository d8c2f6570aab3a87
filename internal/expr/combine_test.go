package expr

import (
	"context"
	"fmt"
	"testing"

	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/timevector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(t *testing.T, v float64, unit string, polarity timevector.Polarity) *timevector.ConstantTimeVector {
	t.Helper()
	tv, err := timevector.NewConstantTimeVector(v, unit, polarity, nil)
	require.NoError(t, err)
	return tv
}

func refOf(t *testing.T, key string, tags Tags) *Expr {
	t.Helper()
	e, err := NewRef(key, tags)
	require.NoError(t, err)
	return e
}

func vectorOf(t *testing.T, tv timevector.TimeVector, tags Tags) *Expr {
	t.Helper()
	e, err := NewVector(tv, tags)
	require.NoError(t, err)
	return e
}

func curveOf(t *testing.T, c curve.Curve, tags Tags) *Expr {
	t.Helper()
	e, err := NewCurve(c, tags)
	require.NoError(t, err)
	return e
}

var (
	levelFlow   = Tags{Level: true, Flow: true}
	levelStock  = Tags{Level: true, Stock: true}
	levelNone   = Tags{Level: true}
	profileNone = Tags{Profile: true}
	none        = Tags{}
)

// exprOf returns a constant leaf whose polarity follows its tags.
func exprOf(t *testing.T, v float64, tags Tags) *Expr {
	t.Helper()
	switch {
	case tags.Profile:
		return vectorOf(t, constant(t, v, "", timevector.ZeroOneProfile()), tags)
	case tags.Level:
		return vectorOf(t, constant(t, v, "", timevector.MaxLevel()), tags)
	default:
		return vectorOf(t, constant(t, v, "", timevector.AvgLevel()), tags)
	}
}

func scalarOf(t *testing.T, e *Expr) float64 {
	t.Helper()
	require.True(t, e.IsLeaf(), "expected a leaf, got %s", e)
	tv, ok := e.Vector()
	require.True(t, ok)
	values, err := tv.Vector(context.Background())
	require.NoError(t, err)
	require.Len(t, values, 1)
	return values[0]
}

func TestCombine_Legality(t *testing.T) {
	categories := map[string]Tags{
		"LF": levelFlow,
		"LS": levelStock,
		"LN": levelNone,
		"PN": profileNone,
		"N":  none,
	}
	legal := map[string]bool{}
	for _, c := range []string{
		"LF+LF", "LS+LS", "LN+LN", "PN+PN", "N+N",
		"LN-LN", "PN-PN", "N-N",
		"LF*LN", "LF*N", "LS*LN", "LS*N", "LN*LF", "LN*LS", "LN*LN", "LN*N", "LN*PN",
		"N*LF", "N*LS", "N*LN", "N*N", "N*PN", "PN*LN", "PN*N",
		"LF/LF", "LF/LN", "LF/N", "LS/LS", "LS/LN", "LS/N", "LN/LN", "LN/N", "N/LN", "N/N",
		"PN/LN", "PN/N", "LN/PN", "N/PN",
	} {
		legal[c] = true
	}

	for ln, lt := range categories {
		for rn, rt := range categories {
			for _, op := range []Op{OpAdd, OpSub, OpMul, OpDiv} {
				name := fmt.Sprintf("%s%s%s", ln, op, rn)
				t.Run(name, func(t *testing.T) {
					got, err := exprOf(t, 4, lt).Combine(op, exprOf(t, 2, rt))
					if legal[name] {
						require.NoError(t, err)
						assert.NotNil(t, got)
						return
					}
					require.ErrorIs(t, err, ErrUnsupported)
					assert.Contains(t, err.Error(), "Unsupported case:")
				})
			}
		}
	}
}

func TestCombine_Folds(t *testing.T) {
	testCases := []struct {
		name     string
		left     *Expr
		right    *Expr
		op       Op
		expected float64
	}{
		{"level flow + level flow", exprOf(t, 1, levelFlow), exprOf(t, 2, levelFlow), OpAdd, 3},
		{"profile + profile", exprOf(t, 1, profileNone), exprOf(t, 2, profileNone), OpAdd, 3},
		{"level none - level none", exprOf(t, 2, levelNone), exprOf(t, 1, levelNone), OpSub, 1},
		{"profile - profile", exprOf(t, 2, profileNone), exprOf(t, 1, profileNone), OpSub, 1},
		{"level none * level none", exprOf(t, 2, levelNone), exprOf(t, 4, levelNone), OpMul, 8},
		{"level flow / level flow", exprOf(t, 10, levelFlow), exprOf(t, 2, levelFlow), OpDiv, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.left.Combine(tc.op, tc.right)
			require.NoError(t, err)
			assert.Equal(t, tc.left.Tags(), got.Tags())
			ops, args := got.Operations()
			assert.Empty(t, ops)
			assert.Empty(t, args)
			assert.Equal(t, tc.expected, scalarOf(t, got))
		})
	}
}

func TestCombine_FoldKeepsUnit(t *testing.T) {
	a := vectorOf(t, constant(t, 100, "MW", timevector.MaxLevel()), levelFlow)
	b := vectorOf(t, constant(t, 50, "MW", timevector.MaxLevel()), levelFlow)

	got, err := a.Add(b)
	require.NoError(t, err)
	tv, ok := got.Vector()
	require.True(t, ok)
	assert.Equal(t, "MW", tv.Unit())
	assert.Equal(t, "150 MW", got.String())
}

func TestCombine_DoesNotFold(t *testing.T) {
	withProfile := exprOf(t, 2, levelNone)
	require.NoError(t, withProfile.SetProfile(exprOf(t, 1, profileNone)))

	testCases := []struct {
		name  string
		left  *Expr
		right *Expr
		op    Op
	}{
		{
			name:  "different polarity",
			left:  exprOf(t, 1, none),
			right: vectorOf(t, constant(t, 2, "", timevector.ZeroOneProfile()), none),
			op:    OpAdd,
		},
		{
			name:  "profile on one side",
			left:  exprOf(t, 1, levelNone),
			right: withProfile,
			op:    OpMul,
		},
		{
			name:  "polarity differs within level flow",
			left:  vectorOf(t, constant(t, 4, "", timevector.ZeroOneProfile()), levelFlow),
			right: exprOf(t, 2, levelFlow),
			op:    OpDiv,
		},
		{
			name:  "different units",
			left:  vectorOf(t, constant(t, 1, "MW", timevector.MaxLevel()), levelFlow),
			right: vectorOf(t, constant(t, 1, "GW", timevector.MaxLevel()), levelFlow),
			op:    OpAdd,
		},
		{
			name:  "product with unit",
			left:  vectorOf(t, constant(t, 2, "MW", timevector.MaxLevel()), levelNone),
			right: vectorOf(t, constant(t, 3, "MW", timevector.MaxLevel()), levelNone),
			op:    OpMul,
		},
		{
			name:  "division by zero",
			left:  exprOf(t, 1, none),
			right: exprOf(t, 0, none),
			op:    OpDiv,
		},
		{
			name:  "reference leaves",
			left:  refOf(t, "a", levelFlow),
			right: refOf(t, "b", levelFlow),
			op:    OpAdd,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.left.Combine(tc.op, tc.right)
			require.NoError(t, err)
			ops, args := got.Operations()
			assert.Equal(t, tc.op.String(), ops)
			require.Len(t, args, 2)
			assert.Same(t, tc.left, args[0])
			assert.Same(t, tc.right, args[1])
			assert.Nil(t, got.Src())
		})
	}
}

func TestCombine_ChainsSamePrecedence(t *testing.T) {
	e1 := exprOf(t, 1, none)
	e2 := vectorOf(t, constant(t, 1, "", timevector.ZeroOneProfile()), none)
	e3 := exprOf(t, 3, none)

	first, err := e1.Add(e2)
	require.NoError(t, err)
	second, err := first.Sub(e3)
	require.NoError(t, err)

	ops, args := second.Operations()
	assert.Equal(t, "+-", ops)
	assert.Equal(t, []*Expr{e1, e2, e3}, args)

	// the operand is left as it was
	ops, args = first.Operations()
	assert.Equal(t, "+", ops)
	assert.Len(t, args, 2)
}

func TestCombine_NestsOtherPrecedence(t *testing.T) {
	e1 := exprOf(t, 4, none)
	e2 := vectorOf(t, constant(t, 2, "", timevector.ZeroOneProfile()), none)
	e3 := exprOf(t, 3, none)

	diff, err := e1.Sub(e2)
	require.NoError(t, err)
	got, err := diff.Mul(e3)
	require.NoError(t, err)

	assert.Nil(t, got.Src())
	ops, args := got.Operations()
	assert.Equal(t, "*", ops)
	require.Len(t, args, 2)
	innerOps, innerArgs := args[0].Operations()
	assert.Equal(t, "-", innerOps)
	assert.Equal(t, []*Expr{e1, e2}, innerArgs)
	assert.Same(t, e3, args[1])
	assert.Equal(t, "(4 - 2) * 3", got.String())
}

func TestCombine_NoChainingAfterDivision(t *testing.T) {
	a, b, c, d := refOf(t, "a", none), refOf(t, "b", none), refOf(t, "c", none), refOf(t, "d", none)

	ab, err := a.Mul(b)
	require.NoError(t, err)
	abc, err := ab.Div(c)
	require.NoError(t, err)
	ops, _ := abc.Operations()
	assert.Equal(t, "*/", ops)

	abcd, err := abc.Mul(d)
	require.NoError(t, err)
	ops, args := abcd.Operations()
	assert.Equal(t, "*", ops)
	assert.Same(t, abc, args[0])
	assert.Equal(t, "(a * b / c) * d", abcd.String())
	require.NoError(t, abcd.VerifyOperations(true))
}

func TestCombine_InheritsLeftTags(t *testing.T) {
	got, err := refOf(t, "price", levelNone).Mul(refOf(t, "volume", levelFlow))
	require.NoError(t, err)
	assert.Equal(t, levelNone, got.Tags())
}

func TestCombine_Numbers(t *testing.T) {
	testCases := []struct {
		name     string
		number   any
		op       Op
		expected string
	}{
		{"float multiply", 2.0, OpMul, "*"},
		{"float divide", 2.0, OpDiv, "/"},
		{"int multiply", 2, OpMul, "*"},
		{"int divide", 2, OpDiv, "/"},
		{"float32 multiply", float32(2), OpMul, "*"},
		{"uint8 divide", uint8(2), OpDiv, "/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := exprOf(t, 3, levelFlow)
			got, err := e.Combine(tc.op, tc.number)
			require.NoError(t, err)
			assert.Nil(t, got.Src())
			ops, args := got.Operations()
			assert.Equal(t, tc.expected, ops)
			require.Len(t, args, 2)
			assert.Same(t, e, args[0])
			assert.Equal(t, 2.0, scalarOf(t, args[1]))
		})
	}
}

func TestCombine_NumbersOnlyScale(t *testing.T) {
	for _, op := range []Op{OpAdd, OpSub} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := exprOf(t, 3, levelFlow).Combine(op, 2.0)
			require.ErrorIs(t, err, ErrUnsupported)
			assert.Contains(t, err.Error(), "Only support multiplication and division with numbers")
		})
	}
}

func TestCombine_UnsupportedOperand(t *testing.T) {
	for _, op := range []Op{OpAdd, OpSub, OpMul, OpDiv} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := exprOf(t, 3, levelFlow).Combine(op, "a string")
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), "Only support Expr, int, float. Got unsupported type string")
		})
	}

	_, err := exprOf(t, 3, levelFlow).Add(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = exprOf(t, 3, levelFlow).Combine(Op('%'), 2.0)
	assert.ErrorIs(t, err, ErrInvalidOperations)
}
