// Package queue persists contract generation work in SQLite and exposes
// helpers for driving item lifecycle.
//
// The Store manages database connections, embedded schema migrations, stats
// queries, heartbeat tracking, stuck-item recovery, and the status
// transitions the workflow manager relies on. Queue items snapshot the
// request and template at enqueue time so a run is reproducible even when
// the template file changes afterwards.
//
// Contract numbers are allocated from the contract_sequences table inside
// the enqueue transaction; sequences are scoped per series and calendar
// year and survive queue clears.
package queue
