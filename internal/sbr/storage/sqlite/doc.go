// Package sqlite contains the SQLite repository for filter-run records.
//
// All database read/write operations for filter runs and their per-track
// outcomes belong here rather than in the engine package. This keeps the
// filtering logic free of SQL noise and makes it easier to swap storage
// backends for testing.
package sqlite
