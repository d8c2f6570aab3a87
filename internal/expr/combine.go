package expr

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/timevector"
)

// Op is one of the four arithmetic operators.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

func (op Op) String() string { return string(op) }

func (op Op) additive() bool { return op == OpAdd || op == OpSub }

func (e *Expr) Add(other *Expr) (*Expr, error) { return e.Combine(OpAdd, other) }
func (e *Expr) Sub(other *Expr) (*Expr, error) { return e.Combine(OpSub, other) }
func (e *Expr) Mul(other *Expr) (*Expr, error) { return e.Combine(OpMul, other) }
func (e *Expr) Div(other *Expr) (*Expr, error) { return e.Combine(OpDiv, other) }

// Combine returns e op other. other is an *Expr or a Go number; numbers are
// only accepted as factors or divisors. Two compatible constants fold into
// one, otherwise a new operation node is returned and neither operand is
// modified.
func (e *Expr) Combine(op Op, other any) (*Expr, error) {
	if !strings.ContainsRune(validOps, rune(op)) {
		return nil, fmt.Errorf("%w: Expected op in %s. Got %q", ErrInvalidOperations, validOps, string(op))
	}
	right, err := operand(op, other)
	if err != nil {
		return nil, err
	}

	lc, rc := e.tags.category(), right.tags.category()
	if !isLegal(op, lc, rc) {
		return nil, fmt.Errorf("%w: Unsupported case: %s %s %s (%s %s %s)", ErrUnsupported, lc, op, rc, e, op, right)
	}

	if folded, ok := fold(e, op, right); ok {
		return folded, nil
	}

	if !e.IsLeaf() && e.profile == nil && Op(e.ops[0]).additive() == op.additive() && !strings.Contains(e.ops, "/") {
		return &Expr{
			ops:  e.ops + string(op),
			args: append(append([]*Expr(nil), e.args...), right),
			tags: e.tags,
		}, nil
	}
	return &Expr{ops: string(op), args: []*Expr{e, right}, tags: e.tags}, nil
}

func operand(op Op, other any) (*Expr, error) {
	var v float64
	switch o := other.(type) {
	case *Expr:
		if o == nil {
			return nil, fmt.Errorf("%w: Only support Expr, int, float. Got nil", ErrInvalidArgument)
		}
		return o, nil
	case int:
		v = float64(o)
	case int8:
		v = float64(o)
	case int16:
		v = float64(o)
	case int32:
		v = float64(o)
	case int64:
		v = float64(o)
	case uint:
		v = float64(o)
	case uint8:
		v = float64(o)
	case uint16:
		v = float64(o)
	case uint32:
		v = float64(o)
	case uint64:
		v = float64(o)
	case float32:
		v = float64(o)
	case float64:
		v = o
	default:
		return nil, fmt.Errorf("%w: Only support Expr, int, float. Got unsupported type %T", ErrInvalidArgument, other)
	}
	if op.additive() {
		return nil, fmt.Errorf("%w: Only support multiplication and division with numbers", ErrUnsupported)
	}
	return Number(v), nil
}

// fold combines two constant leaves with identical tags, polarity, unit and
// reference period. Products and quotients fold only when unitless, and
// division by zero is left to the resolvers.
func fold(left *Expr, op Op, right *Expr) (*Expr, bool) {
	if left.profile != nil || right.profile != nil || left.tags != right.tags {
		return nil, false
	}
	l, ok := left.vector.(*timevector.ConstantTimeVector)
	if !ok || left.kind != srcVector {
		return nil, false
	}
	r, ok := right.vector.(*timevector.ConstantTimeVector)
	if !ok || right.kind != srcVector {
		return nil, false
	}
	if l.Unit() != r.Unit() || !l.Polarity().Equal(r.Polarity()) || !l.ReferencePeriod().Equal(r.ReferencePeriod()) {
		return nil, false
	}
	if !op.additive() && l.Unit() != "" {
		return nil, false
	}

	var v float64
	switch op {
	case OpAdd:
		v = l.Scalar() + r.Scalar()
	case OpSub:
		v = l.Scalar() - r.Scalar()
	case OpMul:
		v = l.Scalar() * r.Scalar()
	case OpDiv:
		if r.Scalar() == 0 {
			return nil, false
		}
		v = l.Scalar() / r.Scalar()
	}
	tv, err := timevector.NewConstantTimeVector(v, l.Unit(), l.Polarity(), l.ReferencePeriod())
	if err != nil {
		return nil, false
	}
	return &Expr{kind: srcVector, vector: tv, tags: left.tags}, true
}
