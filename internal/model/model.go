// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Model container and the typed Data map behind it.
package model

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

// ErrInvalidValue is returned when a key or value cannot be stored in a model.
var ErrInvalidValue = errors.New("invalid model value")

// Concept names used by ContentCounts.
const (
	ConceptExpressions = "expressions"
	ConceptTimeVectors = "timevectors"
	ConceptCurves      = "curves"
)

// Data maps keys to expressions, time vectors and curves. Use Set to keep
// the map well typed.
type Data map[string]any

// Set stores value under key after checking both.
func (d Data) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidValue)
	}
	if _, err := conceptOf(value); err != nil {
		return fmt.Errorf("%w for key %q", err, key)
	}
	d[key] = value
	return nil
}

func conceptOf(value any) (string, error) {
	switch v := value.(type) {
	case *expr.Expr:
		if v != nil {
			return ConceptExpressions, nil
		}
	case timevector.TimeVector:
		if v != nil {
			return ConceptTimeVectors, nil
		}
	case curve.Curve:
		if v != nil {
			return ConceptCurves, nil
		}
	}
	return "", fmt.Errorf("%w: expected Expr, TimeVector or Curve, got %T", ErrInvalidValue, value)
}

// Aggregator is a reversible transformation of a model.
type Aggregator interface {
	Disaggregate(m *Model) error
}

// Model is the root container of a loaded energy model.
type Model struct {
	data        Data
	aggregators []Aggregator
	closers     []io.Closer
}

// New creates and returns an empty Model.
func New() *Model {
	return &Model{data: Data{}}
}

// Data returns the model's data. Writes should go through Set.
func (m *Model) Data() Data { return m.data }

// Set stores value under key. See Data.Set.
func (m *Model) Set(key string, value any) error { return m.data.Set(key, value) }

// Get returns the value stored under key.
func (m *Model) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// AddAggregator records an applied aggregation so Disaggregate can undo it.
func (m *Model) AddAggregator(a Aggregator) {
	m.aggregators = append(m.aggregators, a)
}

// Disaggregate undoes the recorded aggregations in order. On failure the
// failing aggregator and those after it stay recorded.
func (m *Model) Disaggregate() error {
	for i, a := range m.aggregators {
		if err := a.Disaggregate(m); err != nil {
			m.aggregators = m.aggregators[i:]
			return fmt.Errorf("disaggregation %d failed: %w", i, err)
		}
	}
	m.aggregators = nil
	return nil
}

// ContentCounts counts the model's values per concept and type name, for
// example counts["timevectors"]["ConstantTimeVector"].
func (m *Model) ContentCounts() map[string]map[string]int {
	counts := map[string]map[string]int{
		ConceptExpressions: {},
		ConceptTimeVectors: {},
		ConceptCurves:      {},
	}
	for _, v := range m.data {
		concept, err := conceptOf(v)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%T", v)
		name = name[strings.LastIndexByte(name, '.')+1:]
		counts[concept][name]++
	}
	return counts
}

// Close releases the loaders opened while loading model files.
func (m *Model) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}
