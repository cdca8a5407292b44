// Package sqlite provides a single-file queue database for local runs.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One Store serves every queue port:
//
//   - ProductQueue and OutcomeRecorder: the produtos table
//   - CategoryLookupStore: the produtos_categoria table
//   - StatusCheckStore: the produtos_status table
//   - BatchHistoryStore: the batch_runs table
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Column names match the Postgres store so rows can
// be moved between them.
//
// # Data Location
//
// The database file is <dir>/autopecas.db.
package sqlite
