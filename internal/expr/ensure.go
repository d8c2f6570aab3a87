package expr

import (
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

// Ensure converts value into an Expr with the given tags. nil stays nil,
// keys, time vectors and curves become leaves, and an existing Expr is
// returned as is once its tags are confirmed to match. profile is attached
// to new leaves only.
func Ensure(value any, tags Tags, profile *Expr) (*Expr, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}

	var (
		e   *Expr
		err error
	)
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Expr:
		if v == nil {
			return nil, nil
		}
		if v.tags != tags {
			return nil, fmt.Errorf("%w: Given Expr has a mismatch between expected and actual flow/stock or level/profile status: expected (%s), got (%s)",
				ErrInvalidTags, tags, v.tags)
		}
		return v, nil
	case string:
		e, err = NewRef(v, tags)
	case timevector.TimeVector:
		e, err = NewVector(v, tags)
	case curve.Curve:
		e, err = NewCurve(v, tags)
	default:
		return nil, fmt.Errorf("%w: Expected value to be of type Expr, str, Curve, TimeVector or None. Got %T.", ErrInvalidArgument, value)
	}
	if err != nil {
		return nil, err
	}

	if profile != nil {
		if err := e.SetProfile(profile); err != nil {
			return nil, err
		}
	}
	return e, nil
}
