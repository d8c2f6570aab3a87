package resolve

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

var (
	// ErrInvalidArgument is returned for missing arguments and for database
	// values that are not expressions, time vectors or curves.
	ErrInvalidArgument = errors.New("invalid resolver argument")
	// ErrInvalidExpr is returned when an expression cannot be resolved in
	// the requested mode, such as a level reached by GetProfileVector.
	ErrInvalidExpr = errors.New("invalid expression for resolver")
	// ErrUnsupported is returned for expressions the resolvers cannot
	// evaluate, such as curves.
	ErrUnsupported = errors.New("unsupported by resolver")
	// ErrCycle is returned when a reference resolves to itself.
	ErrCycle = errors.New("reference cycle")
	// ErrDivisionByZero is returned when an operation divides by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// walker holds what the level and profile resolvers share for one call.
type walker struct {
	db        querydb.QueryDB
	dataDim   *timeindex.SinglePeriodTimeIndex
	scenDim   *timeindex.FixedFrequencyTimeIndex
	resolving map[string]bool
}

func newWalker(e *expr.Expr, db querydb.QueryDB, dataDim *timeindex.SinglePeriodTimeIndex, scenDim *timeindex.FixedFrequencyTimeIndex) (*walker, error) {
	switch {
	case e == nil:
		return nil, fmt.Errorf("%w: expression is nil", ErrInvalidArgument)
	case db == nil:
		return nil, fmt.Errorf("%w: query database is nil", ErrInvalidArgument)
	case dataDim == nil:
		return nil, fmt.Errorf("%w: data dimension is nil", ErrInvalidArgument)
	case scenDim == nil:
		return nil, fmt.Errorf("%w: scenario dimension is nil", ErrInvalidArgument)
	}
	if err := verifyOperations(e); err != nil {
		return nil, err
	}
	return &walker{db: db, dataDim: dataDim, scenDim: scenDim, resolving: map[string]bool{}}, nil
}

// lookup fetches key from the database and calls visit with the value while
// key is marked as being resolved.
func (w *walker) lookup(key string, visit func(value any) error) error {
	if w.resolving[key] {
		return fmt.Errorf("%w: %q refers back to itself", ErrCycle, key)
	}
	value, err := w.db.Get(key)
	if err != nil {
		return err
	}
	if e, ok := value.(*expr.Expr); ok {
		if err := verifyOperations(e); err != nil {
			return fmt.Errorf("resolving %q: %w", key, err)
		}
	}
	w.resolving[key] = true
	defer delete(w.resolving, key)
	if err := visit(value); err != nil {
		return fmt.Errorf("resolving %q: %w", key, err)
	}
	return nil
}

// verifyOperations checks the operations of e and of its profile.
func verifyOperations(e *expr.Expr) error {
	if err := e.VerifyOperations(false); err != nil {
		return err
	}
	if p := e.Profile(); p != nil {
		return p.VerifyOperations(false)
	}
	return nil
}

func unexpectedValue(key string, value any) error {
	return fmt.Errorf("%w: %q holds %T, expected an expression, time vector or curve", ErrInvalidArgument, key, value)
}
