// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file converts native HCL arithmetic into expression trees.
//
// Only a small subset of the HCL expression language is meaningful here:
// plain references to other keys, number literals, parentheses, unary minus
// and the four binary operators. Everything else is reported as a
// diagnostic pointing at the offending source range.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var binaryOps = map[*hclsyntax.Operation]expr.Op{
	hclsyntax.OpAdd:      expr.OpAdd,
	hclsyntax.OpSubtract: expr.OpSub,
	hclsyntax.OpMultiply: expr.OpMul,
	hclsyntax.OpDivide:   expr.OpDiv,
}

// exprConverter resolves references while converting. References to expr
// blocks take that block's tags; references to other keys take the tags of
// the expression being converted.
type exprConverter struct {
	exprTags map[string]expr.Tags
	known    map[string]bool
}

// term is a converted operand: an expression, or a plain number that has
// not been combined with one yet.
type term struct {
	e     *expr.Expr
	num   float64
	isNum bool
}

func numberTerm(f float64) term { return term{num: f, isNum: true} }

func (c *exprConverter) convert(e hcl.Expression, tags expr.Tags) (*expr.Expr, hcl.Diagnostics) {
	t, diags := c.term(e, tags)
	if diags.HasErrors() {
		return nil, diags
	}
	if t.isNum {
		return expr.Number(t.num), nil
	}
	return t.e, nil
}

func (c *exprConverter) term(e hcl.Expression, tags expr.Tags) (term, hcl.Diagnostics) {
	syntaxExpr, ok := e.(hclsyntax.Expression)
	if !ok {
		return term{}, diag(e.Range(), "Unsupported expression", "Expressions must be written in native HCL syntax.")
	}

	switch x := syntaxExpr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return c.term(x.Expression, tags)

	case *hclsyntax.ScopeTraversalExpr:
		name := x.Traversal.RootName()
		if len(x.Traversal) > 1 {
			return term{}, diag(x.Range(), "Unsupported reference", fmt.Sprintf("References must be plain keys; %q has attribute or index steps.", name))
		}
		refTags, ok := c.exprTags[name]
		if !ok {
			if !c.known[name] {
				return term{}, diag(x.Range(), "Unknown reference", fmt.Sprintf("No block is labelled %q.", name))
			}
			refTags = tags
		}
		ref, err := expr.NewRef(name, refTags)
		if err != nil {
			return term{}, diag(x.Range(), "Invalid reference", err.Error())
		}
		return term{e: ref}, nil

	case *hclsyntax.LiteralValueExpr:
		f, diags := number(x.Val, x.Range())
		if diags.HasErrors() {
			return term{}, diags
		}
		return numberTerm(f), nil

	case *hclsyntax.UnaryOpExpr:
		if x.Op != hclsyntax.OpNegate {
			return term{}, diag(x.Range(), "Unsupported operator", "Only unary minus is supported.")
		}
		inner, diags := c.term(x.Val, tags)
		if diags.HasErrors() {
			return term{}, diags
		}
		if inner.isNum {
			return numberTerm(-inner.num), nil
		}
		negated, err := inner.e.Combine(expr.OpMul, -1.0)
		if err != nil {
			return term{}, diag(x.Range(), "Invalid operation", err.Error())
		}
		return term{e: negated}, nil

	case *hclsyntax.BinaryOpExpr:
		op, ok := binaryOps[x.Op]
		if !ok {
			return term{}, diag(x.Range(), "Unsupported operator", "Only +, -, * and / are supported.")
		}
		lhs, diags := c.term(x.LHS, tags)
		if diags.HasErrors() {
			return term{}, diags
		}
		rhs, diags := c.term(x.RHS, tags)
		if diags.HasErrors() {
			return term{}, diags
		}
		result, err := combine(lhs, op, rhs)
		if err != nil {
			return term{}, diag(x.Range(), "Invalid operation", err.Error())
		}
		return result, nil
	}

	return term{}, diag(e.Range(), "Unsupported expression", fmt.Sprintf("Expressions of type %T cannot be used here.", syntaxExpr))
}

// combine applies op to two terms. Numbers only scale or divide an
// expression; two numbers are computed directly.
func combine(lhs term, op expr.Op, rhs term) (term, error) {
	switch {
	case lhs.isNum && rhs.isNum:
		switch op {
		case expr.OpAdd:
			return numberTerm(lhs.num + rhs.num), nil
		case expr.OpSub:
			return numberTerm(lhs.num - rhs.num), nil
		case expr.OpMul:
			return numberTerm(lhs.num * rhs.num), nil
		}
		if rhs.num == 0 {
			return term{}, fmt.Errorf("%w: division by zero", ErrInvalidValue)
		}
		return numberTerm(lhs.num / rhs.num), nil

	case lhs.isNum:
		switch op {
		case expr.OpMul:
			e, err := rhs.e.Combine(expr.OpMul, lhs.num)
			return term{e: e}, err
		case expr.OpDiv:
			e, err := expr.Number(lhs.num).Combine(expr.OpDiv, rhs.e)
			return term{e: e}, err
		}
		return term{}, fmt.Errorf("%w: Only support multiplication and division with numbers", expr.ErrUnsupported)

	case rhs.isNum:
		e, err := lhs.e.Combine(op, rhs.num)
		return term{e: e}, err
	}
	e, err := lhs.e.Combine(op, rhs.e)
	return term{e: e}, err
}

func number(v cty.Value, rng hcl.Range) (float64, hcl.Diagnostics) {
	v, err := convert.Convert(v, cty.Number)
	if err != nil || v.IsNull() {
		return 0, diag(rng, "Invalid number", "Literals in expressions must be numbers.")
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return 0, diag(rng, "Invalid number", err.Error())
	}
	return f, nil
}

func diag(rng hcl.Range, summary, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}
