package expr

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

type srcKind int

const (
	srcNone srcKind = iota
	srcRef
	srcVector
	srcCurve
)

// Expr is a node of an expression tree. Leaves have a source and no
// operations; operation nodes have no source.
type Expr struct {
	kind   srcKind
	ref    string
	vector timevector.TimeVector
	curve  curve.Curve

	tags    Tags
	profile *Expr

	ops  string
	args []*Expr
}

// NewRef returns a leaf referring to key in a query database.
func NewRef(key string, tags Tags) (*Expr, error) {
	return newLeaf(&Expr{kind: srcRef, ref: key}, tags)
}

// NewVector returns a leaf over a time vector.
func NewVector(tv timevector.TimeVector, tags Tags) (*Expr, error) {
	return newLeaf(&Expr{kind: srcVector, vector: tv}, tags)
}

// NewCurve returns a leaf over a curve.
func NewCurve(c curve.Curve, tags Tags) (*Expr, error) {
	return newLeaf(&Expr{kind: srcCurve, curve: c}, tags)
}

func newLeaf(e *Expr, tags Tags) (*Expr, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	e.tags = tags
	return e, nil
}

// Number returns an untagged, unitless constant leaf.
func Number(v float64) *Expr {
	tv, err := timevector.NewConstantTimeVector(v, "", timevector.AvgLevel(), nil)
	if err != nil {
		panic(err)
	}
	return &Expr{kind: srcVector, vector: tv}
}

// NewOperation returns an operation node. Only the structure of ops and
// args is checked here; see VerifyOperations for precedence rules.
func NewOperation(ops string, args []*Expr, tags Tags) (*Expr, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	if err := CheckOperations(ops, args, true); err != nil {
		return nil, err
	}
	return &Expr{ops: ops, args: append([]*Expr(nil), args...), tags: tags}, nil
}

func (e *Expr) Tags() Tags      { return e.tags }
func (e *Expr) IsFlow() bool    { return e.tags.Flow }
func (e *Expr) IsStock() bool   { return e.tags.Stock }
func (e *Expr) IsLevel() bool   { return e.tags.Level }
func (e *Expr) IsProfile() bool { return e.tags.Profile }
func (e *Expr) IsLeaf() bool    { return e.ops == "" }
func (e *Expr) Profile() *Expr  { return e.profile }

// Src returns the key, time vector or curve of a leaf, and nil for an
// operation node.
func (e *Expr) Src() any {
	switch e.kind {
	case srcRef:
		return e.ref
	case srcVector:
		return e.vector
	case srcCurve:
		return e.curve
	}
	return nil
}

// Ref returns the database key of a reference leaf.
func (e *Expr) Ref() (string, bool) { return e.ref, e.kind == srcRef }

// Vector returns the time vector of a vector leaf.
func (e *Expr) Vector() (timevector.TimeVector, bool) { return e.vector, e.kind == srcVector }

// Curve returns the curve of a curve leaf.
func (e *Expr) Curve() (curve.Curve, bool) { return e.curve, e.kind == srcCurve }

// Operations returns the ops string and a copy of the arguments.
func (e *Expr) Operations() (string, []*Expr) {
	return e.ops, append([]*Expr(nil), e.args...)
}

// WithTags returns a shallow copy of e carrying tags. The profile is kept
// when the copy is still a level.
func (e *Expr) WithTags(tags Tags) (*Expr, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	c := *e
	c.tags = tags
	c.args = append([]*Expr(nil), e.args...)
	if !tags.Level {
		c.profile = nil
	}
	return &c, nil
}

// SetProfile attaches a profile to a level.
func (e *Expr) SetProfile(profile *Expr) error {
	if !e.tags.Level {
		return fmt.Errorf("%w: Cannot set profile on Expr that is not a level.", ErrInvalidTags)
	}
	e.profile = profile
	return nil
}

// AddLoaders records every loader reachable from e into set.
func (e *Expr) AddLoaders(set loader.Set) {
	switch e.kind {
	case srcVector:
		set.Add(e.vector.Loader())
	case srcCurve:
		set.Add(e.curve.Loader())
	}
	if e.profile != nil {
		e.profile.AddLoaders(set)
	}
	for _, arg := range e.args {
		arg.AddLoaders(set)
	}
}

// Equal compares source, tags, profile and operations structurally.
func (e *Expr) Equal(o *Expr) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.kind != o.kind || e.tags != o.tags || e.ops != o.ops || len(e.args) != len(o.args) {
		return false
	}
	switch e.kind {
	case srcRef:
		if e.ref != o.ref {
			return false
		}
	case srcVector:
		if !e.vector.Equal(o.vector) {
			return false
		}
	case srcCurve:
		if !e.curve.Equal(o.curve) {
			return false
		}
	}
	if !e.profile.Equal(o.profile) {
		return false
	}
	for i := range e.args {
		if !e.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Hash is consistent with Equal.
func (e *Expr) Hash() uint64 {
	h := fnv.New64a()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	writeUint := func(v uint64) { write(strconv.FormatUint(v, 16)) }

	write(strconv.Itoa(int(e.kind)))
	switch e.kind {
	case srcRef:
		write(e.ref)
	case srcVector:
		writeUint(e.vector.Hash())
	case srcCurve:
		write(e.curve.UniqueName())
		if l := e.curve.Loader(); l != nil {
			write(l.ID())
		}
	}
	write(e.tags.String())
	if e.profile != nil {
		writeUint(e.profile.Hash())
	}
	write(e.ops)
	for _, arg := range e.args {
		writeUint(arg.Hash())
	}
	return h.Sum64()
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.kind {
	case srcRef:
		return e.ref
	case srcVector:
		if c, ok := e.vector.(*timevector.ConstantTimeVector); ok {
			return c.ExprString()
		}
		return e.vector.String()
	case srcCurve:
		return e.curve.UniqueName()
	}

	var b strings.Builder
	for i, arg := range e.args {
		if i > 0 {
			b.WriteString(" ")
			b.WriteByte(e.ops[i-1])
			b.WriteString(" ")
		}
		if arg.IsLeaf() {
			b.WriteString(arg.String())
		} else {
			b.WriteString("(" + arg.String() + ")")
		}
	}
	return b.String()
}
