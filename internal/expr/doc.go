// Package expr implements the expression algebra over energy quantities.
//
// An Expr is either a leaf (a database key, a time vector or a curve) or an
// operation node holding an ops string such as "+-" and len(ops)+1
// arguments. Leaves carry category tags (flow or stock, level or profile)
// that decide which combinations are legal. Combining two constant leaves
// with matching tags folds them into a single constant; anything else builds
// a lazy tree that the resolve package evaluates later.
package expr
