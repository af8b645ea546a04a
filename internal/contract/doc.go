// Package contract holds the domain model a generation request is built
// from: the counterparty entity, the negotiated terms, the year-by-year
// commission matrix, the compact commission structure, and the per-year
// share records the structure expands into. The types carry their wire
// shapes and emit the placeholder entries templates substitute.
package contract
