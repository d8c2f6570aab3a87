// Package units converts between the physical units used by model data.
//
// A unit string is a product or quotient of known unit tokens, optionally
// prefixed by a numeric multiplier, e.g. "MW", "2*kW", "EUR/MWh" or "m3/s".
// Conversion between two units is possible when both reduce to the same base
// dimensions. Well-known pairs are answered from a fixed table before any
// parsing takes place.
package units
