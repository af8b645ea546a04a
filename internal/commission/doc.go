// Package commission analyzes year-by-year commission grids into the
// compact pattern placeholders templates switch on, and expands compact
// first/middle/last layouts into per-year share records.
package commission
