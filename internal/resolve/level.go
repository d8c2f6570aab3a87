package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/gridexpr/internal/ctxlog"
	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/specialistvlad/gridexpr/internal/timevector"
	"github.com/specialistvlad/gridexpr/internal/units"
)

// quantity is an intermediate level value. Leaves convertible to the target
// unit are converted on read and marked inTarget; other units are carried
// dimensionally and converted once at the root.
type quantity struct {
	value    float64
	unit     units.Unit
	inTarget bool
}

type levelResolver struct {
	*walker
	unit   string
	target units.Unit
	isMax  bool
}

// GetLevelValue resolves e to a single value in unit, averaged over dataDim.
// isMax selects max or average levels; leaves of the other kind are converted
// with the mean of the profile attached to the closest enclosing expression.
// An empty unit disables unit conversion.
//
// When db is a querydb.Cache the result is stored with the time it took.
func GetLevelValue(ctx context.Context, e *expr.Expr, db querydb.QueryDB, unit string, dataDim *timeindex.SinglePeriodTimeIndex, scenDim *timeindex.FixedFrequencyTimeIndex, isMax bool) (float64, error) {
	w, err := newWalker(e, db, dataDim, scenDim)
	if err != nil {
		return 0, err
	}
	return newLevelResolver(w, unit, isMax).root(ctx, e)
}

func newLevelResolver(w *walker, unit string, isMax bool) *levelResolver {
	return &levelResolver{walker: w, unit: unit, isMax: isMax}
}

func (r *levelResolver) root(ctx context.Context, e *expr.Expr) (float64, error) {
	logger := ctxlog.FromContext(ctx)
	cache, _ := r.db.(querydb.Cache)
	key := fmt.Sprintf("level/%x/%s/%s/%s/%t", e.Hash(), r.unit, r.dataDim, r.scenDim, r.isMax)
	if cache != nil {
		if v, err := cache.Get(key); err == nil {
			if f, ok := v.(float64); ok {
				logger.Debug("Level value served from cache", "expr", e.String())
				return f, nil
			}
		}
	}

	if r.unit != "" {
		target, err := units.Parse(r.unit)
		if err != nil {
			return 0, err
		}
		r.target = target
	}

	start := time.Now()
	q, err := r.resolve(ctx, e, nil)
	if err != nil {
		return 0, err
	}
	value, err := r.finish(q)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e, err)
	}
	elapsed := time.Since(start)
	logger.Debug("Resolved level value", "expr", e.String(), "unit", r.unit, "value", value, "elapsed", elapsed)

	if cache != nil {
		cache.Put(key, value, elapsed)
	}
	return value, nil
}

func (r *levelResolver) finish(q quantity) (float64, error) {
	if r.unit == "" || q.inTarget {
		return q.value, nil
	}
	if q.unit.IsDimensionless() {
		f, err := units.Factor(q.unit, units.One)
		if err != nil {
			return 0, err
		}
		return q.value * f, nil
	}
	f, err := units.Factor(q.unit, r.target)
	if err != nil {
		return 0, err
	}
	return q.value * f, nil
}

// resolve evaluates e. profile is the profile of the closest enclosing
// expression that has one.
func (r *levelResolver) resolve(ctx context.Context, e *expr.Expr, profile *expr.Expr) (quantity, error) {
	if p := e.Profile(); p != nil {
		profile = p
	}
	if !e.IsLeaf() {
		return r.operation(ctx, e, profile)
	}
	if key, ok := e.Ref(); ok {
		var q quantity
		err := r.lookup(key, func(value any) error {
			var err error
			switch v := value.(type) {
			case *expr.Expr:
				q, err = r.resolve(ctx, v, profile)
			case timevector.TimeVector:
				q, err = r.vector(ctx, e, v, profile)
			case curve.Curve:
				err = fmt.Errorf("%w: curve %s in level expression", ErrUnsupported, v)
			default:
				err = unexpectedValue(key, value)
			}
			return err
		})
		return q, err
	}
	if tv, ok := e.Vector(); ok {
		return r.vector(ctx, e, tv, profile)
	}
	return quantity{}, fmt.Errorf("%w: curve %s in level expression", ErrUnsupported, e)
}

func (r *levelResolver) operation(ctx context.Context, e *expr.Expr, profile *expr.Expr) (quantity, error) {
	ops, args := e.Operations()
	acc, err := r.resolve(ctx, args[0], profile)
	if err != nil {
		return quantity{}, err
	}
	for i, op := range ops {
		next, err := r.resolve(ctx, args[i+1], profile)
		if err != nil {
			return quantity{}, err
		}
		if acc, err = r.apply(acc, expr.Op(op), next); err != nil {
			return quantity{}, fmt.Errorf("%s: %w", e, err)
		}
	}
	return acc, nil
}

func (r *levelResolver) apply(a quantity, op expr.Op, b quantity) (quantity, error) {
	if r.unit == "" {
		return applyPlain(a, op, b)
	}
	switch op {
	case expr.OpAdd, expr.OpSub:
		return r.add(a, op, b)
	case expr.OpMul:
		switch {
		case a.inTarget && (b.inTarget || b.unit.IsDimensionless()),
			b.inTarget && a.unit.IsDimensionless():
			return quantity{value: a.value * b.value, unit: r.target, inTarget: true}, nil
		}
		a, b = r.carried(a), r.carried(b)
		return quantity{value: a.value * b.value, unit: a.unit.Mul(b.unit)}, nil
	case expr.OpDiv:
		if b.value == 0 {
			return quantity{}, ErrDivisionByZero
		}
		switch {
		case a.inTarget && b.inTarget:
			return quantity{value: a.value / b.value, unit: units.One}, nil
		case a.inTarget && b.unit.IsDimensionless():
			return quantity{value: a.value / b.value, unit: r.target, inTarget: true}, nil
		}
		a, b = r.carried(a), r.carried(b)
		return quantity{value: a.value / b.value, unit: a.unit.Div(b.unit)}, nil
	}
	return quantity{}, fmt.Errorf("%w: operator %q", ErrUnsupported, op)
}

// add converts b to the unit of a. A dimensionless side is taken as is.
func (r *levelResolver) add(a quantity, op expr.Op, b quantity) (quantity, error) {
	sign := 1.0
	if op == expr.OpSub {
		sign = -1
	}
	switch {
	case a.inTarget && b.inTarget,
		b.unit.IsDimensionless() && !b.inTarget:
		a.value += sign * b.value
		return a, nil
	case a.unit.IsDimensionless() && !a.inTarget:
		b.value = a.value + sign*b.value
		return b, nil
	}
	a, b = r.carried(a), r.carried(b)
	f, err := units.Factor(b.unit, a.unit)
	if err != nil {
		return quantity{}, err
	}
	a.value += sign * b.value * f
	return a, nil
}

// carried drops the inTarget mark, giving q the target unit explicitly.
func (r *levelResolver) carried(q quantity) quantity {
	if q.inTarget {
		q.unit, q.inTarget = r.target, false
	}
	return q
}

func applyPlain(a quantity, op expr.Op, b quantity) (quantity, error) {
	switch op {
	case expr.OpAdd:
		a.value += b.value
	case expr.OpSub:
		a.value -= b.value
	case expr.OpMul:
		a.value *= b.value
	case expr.OpDiv:
		if b.value == 0 {
			return quantity{}, ErrDivisionByZero
		}
		a.value /= b.value
	}
	return a, nil
}

// vector reads tv for the leaf e.
func (r *levelResolver) vector(ctx context.Context, e *expr.Expr, tv timevector.TimeVector, profile *expr.Expr) (quantity, error) {
	polarity := tv.Polarity()
	if !polarity.IsLevel() {
		return quantity{}, fmt.Errorf("%w: Expected %s to be a level time vector, got %s", ErrInvalidExpr, tv, polarity)
	}
	value, err := r.average(ctx, tv)
	if err != nil {
		return quantity{}, fmt.Errorf("%s: %w", tv, err)
	}

	if e.IsLevel() && *polarity.IsMaxLevel != r.isMax {
		if value, err = r.convertPolarity(ctx, value, *polarity.IsMaxLevel, profile); err != nil {
			return quantity{}, fmt.Errorf("%s: %w", e, err)
		}
	}
	return r.leafQuantity(value, tv.Unit())
}

// average is the mean of tv over the data window.
func (r *levelResolver) average(ctx context.Context, tv timevector.TimeVector) (float64, error) {
	values, err := tv.Vector(ctx)
	if err != nil {
		return 0, err
	}
	if tv.IsConstant() && len(values) == 1 {
		return values[0], nil
	}
	index, err := tv.TimeIndex(ctx)
	if err != nil {
		return 0, err
	}
	return index.PeriodAverage(values, r.dataDim.StartTime(), r.dataDim.PeriodDuration(), r.dataDim.Is52WeekYears())
}

// convertPolarity turns a max level into an average level or back, using
// the mean of the zero-one profile over the scenario horizon.
func (r *levelResolver) convertPolarity(ctx context.Context, value float64, fromMax bool, profile *expr.Expr) (float64, error) {
	if profile == nil {
		return 0, fmt.Errorf("%w: converting between max and average level requires a profile", ErrUnsupported)
	}
	vector, err := newProfileResolver(r.walker, true).resolve(ctx, profile)
	if err != nil {
		return 0, err
	}
	avg := mean(vector)
	if fromMax {
		return value * avg, nil
	}
	if avg == 0 {
		return 0, fmt.Errorf("%w: profile %s has zero mean", ErrDivisionByZero, profile)
	}
	return value / avg, nil
}

// leafQuantity converts a leaf value to the target unit when it can.
func (r *levelResolver) leafQuantity(value float64, unit string) (quantity, error) {
	if r.unit == "" {
		return quantity{value: value}, nil
	}
	if unit == "" {
		return quantity{value: value, unit: units.One}, nil
	}
	if f, err := units.ConversionFactor(unit, r.unit); err == nil {
		return quantity{value: value * f, unit: r.target, inTarget: true}, nil
	}
	u, err := units.Parse(unit)
	if err != nil {
		return quantity{}, err
	}
	if u.IsDimensionless() {
		f, err := units.Factor(u, units.One)
		if err != nil {
			return quantity{}, err
		}
		return quantity{value: value * f, unit: units.One}, nil
	}
	return quantity{value: value, unit: u}, nil
}
