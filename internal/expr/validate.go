package expr

import (
	"fmt"
	"strings"
)

const validOps = "+-*/"

// CheckOperations validates the structure of an ops/args pair. An empty
// pair is accepted only when expectOps is false.
func CheckOperations(ops string, args []*Expr, expectOps bool) error {
	if ops == "" && len(args) == 0 {
		if expectOps {
			return fmt.Errorf("%w: Expected ops, but got (%q, %d args)", ErrInvalidOperations, ops, len(args))
		}
		return nil
	}
	if ops == "" {
		return fmt.Errorf("%w: Expected ops to have length. Got %q", ErrInvalidOperations, ops)
	}
	if len(ops) != len(args)-1 {
		return fmt.Errorf("%w: Expected len(ops) == len(args) - 1. Got len(ops)=%d, len(args)=%d", ErrInvalidOperations, len(ops), len(args))
	}
	for _, op := range ops {
		if !strings.ContainsRune(validOps, op) {
			return fmt.Errorf("%w: Expected all op in ops in %s. Got %q", ErrInvalidOperations, validOps, ops)
		}
	}
	for i, arg := range args {
		if arg == nil {
			return fmt.Errorf("%w: Expected all args to be Expr. Got nil at index %d", ErrInvalidArgument, i)
		}
	}
	return nil
}

// VerifyOperations checks the structure of e and its operation arguments
// and enforces precedence: an ops string never mixes +- with */, and
// nothing but / may follow a /.
func (e *Expr) VerifyOperations(expectOps bool) error {
	if err := CheckOperations(e.ops, e.args, expectOps); err != nil {
		return err
	}
	if e.ops == "" {
		return nil
	}
	if strings.ContainsAny(e.ops, "+-") && strings.ContainsAny(e.ops, "*/") {
		return fmt.Errorf("%w: Found +- in same operation level as */ in operations %q", ErrInvalidOperations, e.ops)
	}
	if i := strings.IndexByte(e.ops, '/'); i >= 0 && strings.ContainsAny(e.ops[i:], "+-*") {
		return fmt.Errorf("%w: Found +-* after / in operations %q", ErrInvalidOperations, e.ops)
	}
	for _, arg := range e.args {
		if err := arg.VerifyOperations(false); err != nil {
			return err
		}
	}
	return nil
}
