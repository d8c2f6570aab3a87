// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the named contents of an energy model and loads them
// from HCL files.
//
// # Core Concepts
//
//   - Model: a container of named values. Every value is an expression, a
//     time vector or a curve; anything else is rejected on Set.
//
//   - Model files: `.hcl` files with `constant`, `series`, `loaded`,
//     `transform` and `expr` blocks. Block labels become keys in the model's data, and
//     `expr` values are written as native HCL arithmetic over those keys.
//
//   - Aggregators: transformations that have been applied to a model and can
//     be undone with Disaggregate.
//
// The package performs no evaluation. Expressions reference other keys by
// name and are resolved later through a query database.
package model
