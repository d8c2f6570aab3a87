// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the HCL schema of model files. Each block type maps to
// one kind of model value; the label of the block is the key it is stored
// under.
package model

import (
	"github.com/hashicorp/hcl/v2"
)

// hclModelFile represents the top-level structure of a model file for decoding.
type hclModelFile struct {
	Constants  []*hclConstant  `hcl:"constant,block"`
	Series     []*hclSeries    `hcl:"series,block"`
	Loaded     []*hclLoaded    `hcl:"loaded,block"`
	Transforms []*hclTransform `hcl:"transform,block"`
	Exprs      []*hclExpr      `hcl:"expr,block"`
}

type hclReferencePeriod struct {
	StartYear int `hcl:"start_year"`
	NumYears  int `hcl:"num_years"`
}

// hclConstant is a single value valid at all times.
type hclConstant struct {
	Name            string              `hcl:"name,label"`
	Value           float64             `hcl:"value"`
	Unit            string              `hcl:"unit,optional"`
	Level           string              `hcl:"level,optional"`
	Profile         string              `hcl:"profile,optional"`
	ReferencePeriod *hclReferencePeriod `hcl:"reference_period,block"`
}

// hclSeries is a list of values over either a fixed frequency grid
// (start and period) or explicit period boundaries (datetimes).
type hclSeries struct {
	Name             string              `hcl:"name,label"`
	Values           hcl.Expression      `hcl:"values"`
	Start            string              `hcl:"start,optional"`
	Period           string              `hcl:"period,optional"`
	Datetimes        hcl.Expression      `hcl:"datetimes,optional"`
	Unit             string              `hcl:"unit,optional"`
	Level            string              `hcl:"level,optional"`
	Profile          string              `hcl:"profile,optional"`
	Is52WeekYears    bool                `hcl:"is_52_week_years,optional"`
	ExtrapolateFirst bool                `hcl:"extrapolate_first,optional"`
	ExtrapolateLast  bool                `hcl:"extrapolate_last,optional"`
	ReferencePeriod  *hclReferencePeriod `hcl:"reference_period,block"`
}

// hclLoaded is a vector or curve stored in a SQLite file. The path is
// relative to the model file.
type hclLoaded struct {
	Name   string `hcl:"name,label"`
	SQLite string `hcl:"sqlite"`
	Vector string `hcl:"vector,optional"`
	Curve  string `hcl:"curve,optional"`
}

// hclTransform scales and shifts a constant, series, loaded vector or another
// transform.
type hclTransform struct {
	Name            string              `hcl:"name,label"`
	Source          string              `hcl:"source"`
	Scale           *float64            `hcl:"scale,optional"`
	Shift           float64             `hcl:"shift,optional"`
	Unit            string              `hcl:"unit,optional"`
	Level           string              `hcl:"level,optional"`
	Profile         string              `hcl:"profile,optional"`
	ReferencePeriod *hclReferencePeriod `hcl:"reference_period,block"`
}

// hclExpr is an expression written as HCL arithmetic over other keys.
type hclExpr struct {
	Name    string         `hcl:"name,label"`
	Value   hcl.Expression `hcl:"value"`
	Tags    []string       `hcl:"tags,optional"`
	Profile hcl.Expression `hcl:"profile,optional"`
}
