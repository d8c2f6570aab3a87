package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for operands and arguments of the
	// wrong type.
	ErrInvalidArgument = errors.New("invalid expression argument")
	// ErrUnsupported is returned when two categories cannot be combined
	// with the requested operator.
	ErrUnsupported = errors.New("unsupported expression operation")
	// ErrInvalidOperations is returned for malformed ops/args pairs.
	ErrInvalidOperations = errors.New("invalid expression operations")
	// ErrInvalidTags is returned for contradicting or mismatched tags.
	ErrInvalidTags = errors.New("invalid expression tags")
)

// Tags classify what a quantity is. Flow and Stock are exclusive, as are
// Level and Profile. A profile is a coefficient and has neither Flow nor
// Stock.
type Tags struct {
	Flow    bool
	Stock   bool
	Level   bool
	Profile bool
}

// Validate reports contradicting tags.
func (t Tags) Validate() error {
	if t.Level && t.Profile {
		return fmt.Errorf("%w: Expr cannot be both level and a profile. Set either is_level or is_profile True or both False.", ErrInvalidTags)
	}
	if t.Flow && t.Stock {
		return fmt.Errorf("%w: Expr cannot be both flow and stock. Set either is_flow or is_stock True or both False.", ErrInvalidTags)
	}
	if t.Profile && (t.Flow || t.Stock) {
		return fmt.Errorf("%w: Expr cannot be both a profile and a flow/stock. Profiles must be coefficients.", ErrInvalidTags)
	}
	return nil
}

func (t Tags) String() string {
	return fmt.Sprintf("is_flow=%t, is_stock=%t, is_level=%t, is_profile=%t", t.Flow, t.Stock, t.Level, t.Profile)
}

type category int

const (
	categoryNone category = iota
	categoryLevelFlow
	categoryLevelStock
	categoryLevelNone
	categoryProfileNone
)

func (t Tags) category() category {
	switch {
	case t.Level && t.Flow:
		return categoryLevelFlow
	case t.Level && t.Stock:
		return categoryLevelStock
	case t.Level:
		return categoryLevelNone
	case t.Profile:
		return categoryProfileNone
	default:
		return categoryNone
	}
}

func (c category) String() string {
	switch c {
	case categoryLevelFlow:
		return "level flow"
	case categoryLevelStock:
		return "level stock"
	case categoryLevelNone:
		return "level none"
	case categoryProfileNone:
		return "profile none"
	default:
		return "none"
	}
}

// scaling reports whether c can scale any other category.
func (c category) scaling() bool {
	return c == categoryLevelNone || c == categoryNone
}

// legalDivisions lists the allowed level/none quotients.
var legalDivisions = map[[2]category]bool{
	{categoryLevelFlow, categoryLevelFlow}:   true,
	{categoryLevelFlow, categoryLevelNone}:   true,
	{categoryLevelFlow, categoryNone}:        true,
	{categoryLevelStock, categoryLevelStock}: true,
	{categoryLevelStock, categoryLevelNone}:  true,
	{categoryLevelStock, categoryNone}:       true,
	{categoryLevelNone, categoryLevelNone}:   true,
	{categoryLevelNone, categoryNone}:        true,
	{categoryNone, categoryLevelNone}:        true,
	{categoryNone, categoryNone}:             true,
}

func isLegal(op Op, left, right category) bool {
	switch op {
	case OpAdd:
		return left == right
	case OpSub:
		return left == right && (left == categoryLevelNone || left == categoryProfileNone || left == categoryNone)
	case OpMul:
		return left.scaling() || right.scaling()
	case OpDiv:
		if left == categoryProfileNone || right == categoryProfileNone {
			return left.scaling() || right.scaling()
		}
		return legalDivisions[[2]category{left, right}]
	}
	return false
}
