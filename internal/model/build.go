// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns decoded value blocks into time vectors and curves.
package model

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/specialistvlad/gridexpr/internal/timevector"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// parsePolarity maps the level/profile attributes of a block to a polarity.
// Exactly one of them must be set.
func parsePolarity(level, profile string) (timevector.Polarity, error) {
	switch {
	case level != "" && profile != "":
		return timevector.Polarity{}, fmt.Errorf("%w: only one of level and profile can be set", ErrInvalidValue)
	case level == "max":
		return timevector.MaxLevel(), nil
	case level == "avg":
		return timevector.AvgLevel(), nil
	case profile == "zero_one":
		return timevector.ZeroOneProfile(), nil
	case profile == "mean_one":
		return timevector.MeanOneProfile(), nil
	case level != "":
		return timevector.Polarity{}, fmt.Errorf("%w: level must be \"max\" or \"avg\", got %q", ErrInvalidValue, level)
	case profile != "":
		return timevector.Polarity{}, fmt.Errorf("%w: profile must be \"zero_one\" or \"mean_one\", got %q", ErrInvalidValue, profile)
	}
	return timevector.Polarity{}, fmt.Errorf("%w: one of level or profile must be set", ErrInvalidValue)
}

func (r *hclReferencePeriod) build() (*timeindex.ReferencePeriod, error) {
	if r == nil {
		return nil, nil
	}
	return timeindex.NewReferencePeriod(r.StartYear, r.NumYears)
}

// parseTags maps the tags attribute of an expr block to expression tags.
func parseTags(names []string) (expr.Tags, error) {
	var tags expr.Tags
	for _, name := range names {
		switch name {
		case "level":
			tags.Level = true
		case "profile":
			tags.Profile = true
		case "flow":
			tags.Flow = true
		case "stock":
			tags.Stock = true
		default:
			return tags, fmt.Errorf("%w: unknown tag %q, expected level, profile, flow or stock", ErrInvalidValue, name)
		}
	}
	return tags, tags.Validate()
}

func buildConstant(c *hclConstant) (*timevector.ConstantTimeVector, error) {
	polarity, err := parsePolarity(c.Level, c.Profile)
	if err != nil {
		return nil, err
	}
	ref, err := c.ReferencePeriod.build()
	if err != nil {
		return nil, err
	}
	return timevector.NewConstantTimeVector(c.Value, c.Unit, polarity, ref)
}

func buildSeries(s *hclSeries) (*timevector.ListTimeVector, error) {
	polarity, err := parsePolarity(s.Level, s.Profile)
	if err != nil {
		return nil, err
	}
	ref, err := s.ReferencePeriod.build()
	if err != nil {
		return nil, err
	}

	var values []float64
	if err := decodeList(s.Values, cty.Number, &values); err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}

	var index timeindex.TimeIndex
	if isNull(s.Datetimes) {
		if s.Start == "" || s.Period == "" {
			return nil, fmt.Errorf("%w: series needs either datetimes or both start and period", ErrInvalidValue)
		}
		start, err := time.Parse(time.RFC3339, s.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start: %w", ErrInvalidValue, err)
		}
		period, err := time.ParseDuration(s.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: period: %w", ErrInvalidValue, err)
		}
		index, err = timeindex.NewFixedFrequencyTimeIndex(start, period, len(values), s.Is52WeekYears, s.ExtrapolateFirst, s.ExtrapolateLast)
		if err != nil {
			return nil, err
		}
	} else {
		if s.Start != "" || s.Period != "" {
			return nil, fmt.Errorf("%w: series cannot have both datetimes and start/period", ErrInvalidValue)
		}
		var raw []string
		if err := decodeList(s.Datetimes, cty.String, &raw); err != nil {
			return nil, fmt.Errorf("datetimes: %w", err)
		}
		datetimes := make([]time.Time, len(raw))
		for i, r := range raw {
			if datetimes[i], err = time.Parse(time.RFC3339, r); err != nil {
				return nil, fmt.Errorf("%w: datetimes[%d]: %w", ErrInvalidValue, i, err)
			}
		}
		index, err = timeindex.NewListTimeIndex(datetimes, s.Is52WeekYears, s.ExtrapolateFirst, s.ExtrapolateLast)
		if err != nil {
			return nil, err
		}
	}

	return timevector.NewListTimeVector(index, values, s.Unit, polarity, ref)
}

func buildTransform(t *hclTransform, source timevector.TimeVector) (*timevector.LinearTransformTimeVector, error) {
	polarity, err := parsePolarity(t.Level, t.Profile)
	if err != nil {
		return nil, err
	}
	ref, err := t.ReferencePeriod.build()
	if err != nil {
		return nil, err
	}
	scale := 1.0
	if t.Scale != nil {
		scale = *t.Scale
	}
	unit := t.Unit
	if unit == "" {
		unit = source.Unit()
	}
	return timevector.NewLinearTransformTimeVector(source, scale, t.Shift, unit, polarity, ref)
}

// decodeList evaluates a literal list attribute into a Go slice of elem.
func decodeList(e hcl.Expression, elem cty.Type, target any) error {
	v, diags := e.Value(nil)
	if diags.HasErrors() {
		return diags
	}
	v, err := convert.Convert(v, cty.List(elem))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if v.IsNull() {
		return fmt.Errorf("%w: list must not be null", ErrInvalidValue)
	}
	return gocty.FromCtyValue(v, target)
}

// isNull reports whether an optional expression attribute was left out.
// gohcl fills missing hcl.Expression fields with a static null.
func isNull(e hcl.Expression) bool {
	if e == nil {
		return true
	}
	if len(e.Variables()) > 0 {
		return false
	}
	v, diags := e.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}
