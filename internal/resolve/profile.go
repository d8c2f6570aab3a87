package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/ctxlog"
	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

type profileResolver struct {
	*walker
	isZeroOne bool
}

// GetProfileVector resolves e to one value per period of scenDim. Every
// expression reached must be tagged profile, except untyped factors of a
// multiplication or division, which are resolved as plain numbers. Profiles
// are summed and multiplied; subtraction is rejected. isZeroOne selects
// zero-one or mean-one output, and isFloat32 rounds every value to float32
// precision.
func GetProfileVector(ctx context.Context, e *expr.Expr, db querydb.QueryDB, dataDim *timeindex.SinglePeriodTimeIndex, scenDim *timeindex.FixedFrequencyTimeIndex, isZeroOne, isFloat32 bool) ([]float64, error) {
	w, err := newWalker(e, db, dataDim, scenDim)
	if err != nil {
		return nil, err
	}
	vector, err := newProfileResolver(w, isZeroOne).resolve(ctx, e)
	if err != nil {
		return nil, err
	}
	if isFloat32 {
		for i, v := range vector {
			vector[i] = float64(float32(v))
		}
	}
	ctxlog.FromContext(ctx).Debug("Resolved profile vector", "expr", e.String(), "periods", len(vector))
	return vector, nil
}

func newProfileResolver(w *walker, isZeroOne bool) *profileResolver {
	return &profileResolver{walker: w, isZeroOne: isZeroOne}
}

func notProfile(e *expr.Expr) error {
	return fmt.Errorf("%w: Expected %s to be is_profile=True.", ErrInvalidExpr, e)
}

func (r *profileResolver) resolve(ctx context.Context, e *expr.Expr) ([]float64, error) {
	if !e.IsProfile() {
		return nil, notProfile(e)
	}
	if !e.IsLeaf() {
		return r.operation(ctx, e)
	}
	if key, ok := e.Ref(); ok {
		var vector []float64
		err := r.lookup(key, func(value any) error {
			var err error
			switch v := value.(type) {
			case *expr.Expr:
				vector, err = r.resolve(ctx, v)
			case timevector.TimeVector:
				vector, err = r.vector(ctx, v)
			case curve.Curve:
				err = fmt.Errorf("%w: curve %s in profile expression", ErrUnsupported, v)
			default:
				err = unexpectedValue(key, value)
			}
			return err
		})
		return vector, err
	}
	if tv, ok := e.Vector(); ok {
		return r.vector(ctx, tv)
	}
	return nil, fmt.Errorf("%w: curve %s in profile expression", ErrUnsupported, e)
}

func (r *profileResolver) operation(ctx context.Context, e *expr.Expr) ([]float64, error) {
	ops, args := e.Operations()
	if strings.ContainsRune(ops, '-') {
		return nil, fmt.Errorf("%w: Expected only +, * and / between profiles in %s", ErrInvalidExpr, e)
	}
	if ops[0] == '+' {
		sum := make([]float64, r.scenDim.NumPeriods())
		for _, arg := range args {
			vector, err := r.resolve(ctx, arg)
			if err != nil {
				return nil, err
			}
			for i, v := range vector {
				sum[i] += v
			}
		}
		return sum, nil
	}

	var product []float64
	scale := 1.0
	for i, arg := range args {
		op := byte('*')
		if i > 0 {
			op = ops[i-1]
		}
		if arg.IsProfile() {
			if op == '/' {
				return nil, fmt.Errorf("%w: Expected divisor %s in %s to be a number, not a profile", ErrInvalidExpr, arg, e)
			}
			vector, err := r.resolve(ctx, arg)
			if err != nil {
				return nil, err
			}
			if product == nil {
				product = vector
				continue
			}
			for j, v := range vector {
				product[j] *= v
			}
			continue
		}
		if arg.Tags() != (expr.Tags{}) {
			return nil, notProfile(arg)
		}
		factor, err := r.factor(ctx, arg)
		if err != nil {
			return nil, err
		}
		if op == '/' {
			if factor == 0 {
				return nil, fmt.Errorf("%w: %s in %s", ErrDivisionByZero, arg, e)
			}
			scale /= factor
		} else {
			scale *= factor
		}
	}
	if product == nil {
		product = make([]float64, r.scenDim.NumPeriods())
		for i := range product {
			product[i] = 1
		}
	}
	for i := range product {
		product[i] *= scale
	}
	return product, nil
}

// factor resolves an untyped argument as a plain number.
func (r *profileResolver) factor(ctx context.Context, e *expr.Expr) (float64, error) {
	q, err := newLevelResolver(r.walker, "", true).resolve(ctx, e, nil)
	if err != nil {
		return 0, err
	}
	return q.value, nil
}

// vector resamples tv onto the scenario horizon in the requested polarity.
func (r *profileResolver) vector(ctx context.Context, tv timevector.TimeVector) ([]float64, error) {
	polarity := tv.Polarity()
	if !polarity.IsProfile() {
		return nil, fmt.Errorf("%w: Expected %s to be a profile time vector, got %s", ErrInvalidExpr, tv, polarity)
	}
	values, err := tv.Vector(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]float64, r.scenDim.NumPeriods())
	if tv.IsConstant() && len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
	} else {
		index, err := tv.TimeIndex(ctx)
		if err != nil {
			return nil, err
		}
		if err := index.WriteIntoFixedFrequency(out, r.scenDim, values); err != nil {
			return nil, fmt.Errorf("%s: %w", tv, err)
		}
	}

	if *polarity.IsZeroOneProfile != r.isZeroOne {
		divisor := maximum(out)
		if !r.isZeroOne {
			divisor = mean(out)
		}
		if divisor != 0 {
			for i := range out {
				out[i] /= divisor
			}
		}
	}
	return out, nil
}

func mean(vector []float64) float64 {
	if len(vector) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vector {
		sum += v
	}
	return sum / float64(len(vector))
}

func maximum(vector []float64) float64 {
	if len(vector) == 0 {
		return 0
	}
	m := vector[0]
	for _, v := range vector[1:] {
		m = max(m, v)
	}
	return m
}
