// Package timevector holds values over a time index: constants, in-memory
// lists, vectors read through a loader, and linear transforms of other
// vectors. Every time vector is either a level or a profile, see Polarity.
package timevector

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

var (
	// ErrInvalidArgument is returned for constructor arguments that do not
	// describe a valid time vector.
	ErrInvalidArgument = errors.New("invalid time vector argument")
)

// TimeVector is a sequence of values over a time index.
type TimeVector interface {
	Vector(ctx context.Context) ([]float64, error)
	TimeIndex(ctx context.Context) (timeindex.TimeIndex, error)
	IsConstant() bool
	Polarity() Polarity
	// Unit is empty for dimensionless data.
	Unit() string
	ReferencePeriod() *timeindex.ReferencePeriod
	// Loader is nil for vectors held in memory.
	Loader() loader.Loader
	Equal(other TimeVector) bool
	Hash() uint64
	String() string
}

// Polarity tells levels from profiles. A level sets IsMaxLevel: true for a
// maximum (capacity) level and false for an average one. A profile sets
// IsZeroOneProfile: true when values are scaled to [0, 1] and false when
// they average to one.
type Polarity struct {
	IsMaxLevel       *bool
	IsZeroOneProfile *bool
}

func boolPtr(b bool) *bool { return &b }

func MaxLevel() Polarity       { return Polarity{IsMaxLevel: boolPtr(true)} }
func AvgLevel() Polarity       { return Polarity{IsMaxLevel: boolPtr(false)} }
func ZeroOneProfile() Polarity { return Polarity{IsZeroOneProfile: boolPtr(true)} }
func MeanOneProfile() Polarity { return Polarity{IsZeroOneProfile: boolPtr(false)} }

// PolarityFromMetadata copies the polarity stored with a loaded vector.
func PolarityFromMetadata(meta loader.VectorMetadata) Polarity {
	return Polarity{IsMaxLevel: meta.IsMaxLevel, IsZeroOneProfile: meta.IsZeroOneProfile}
}

func (p Polarity) IsLevel() bool   { return p.IsMaxLevel != nil && p.IsZeroOneProfile == nil }
func (p Polarity) IsProfile() bool { return p.IsZeroOneProfile != nil && p.IsMaxLevel == nil }

// Validate returns an error unless exactly one of the two flags is set. kind
// names the vector type in the message.
func (p Polarity) Validate(kind string) error {
	if p.IsLevel() || p.IsProfile() {
		return nil
	}
	return fmt.Errorf("%w: Invalid input arguments for %s: exactly one of is_max_level and is_zero_one_profile must be set, got %s",
		ErrInvalidArgument, kind, p)
}

func (p Polarity) Equal(o Polarity) bool {
	return boolPtrEqual(p.IsMaxLevel, o.IsMaxLevel) && boolPtrEqual(p.IsZeroOneProfile, o.IsZeroOneProfile)
}

func (p Polarity) String() string {
	return fmt.Sprintf("is_max_level=%s is_zero_one_profile=%s", fmtBoolPtr(p.IsMaxLevel), fmtBoolPtr(p.IsZeroOneProfile))
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtBoolPtr(b *bool) string {
	if b == nil {
		return "None"
	}
	return strconv.FormatBool(*b)
}

// hasher accumulates the fields of a time vector into an FNV-1a hash.
type hasher struct {
	buf []byte
}

func newHasher(kind string) *hasher {
	h := &hasher{}
	return h.str(kind)
}

func (h *hasher) str(s string) *hasher {
	h.buf = append(h.buf, s...)
	h.buf = append(h.buf, 0)
	return h
}

// float writes f by its bits. Negative zero is written as zero, as the two
// compare equal.
func (h *hasher) float(f float64) *hasher {
	if f == 0 {
		f = 0
	}
	h.buf = strconv.AppendUint(h.buf, math.Float64bits(f), 16)
	h.buf = append(h.buf, 0)
	return h
}

func (h *hasher) polarity(p Polarity) *hasher {
	return h.str(p.String())
}

func (h *hasher) ref(rp *timeindex.ReferencePeriod) *hasher {
	return h.str(rp.String())
}

func (h *hasher) sum() uint64 {
	f := fnv.New64a()
	_, _ = f.Write(h.buf)
	return f.Sum64()
}

func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
