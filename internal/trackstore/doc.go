// Package trackstore persists pipeline state that must survive between
// runs: per-track failure records, which gate retries until the
// configured horizon passes, and run summaries for the status command.
// State lives in a SQLite database so concurrent writers in one process
// and crashes mid-run both leave consistent records.
//
// Schema changes go in a new numbered file under migrations/; applied
// versions are tracked in schema_migrations.
package trackstore
