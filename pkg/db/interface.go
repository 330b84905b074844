package db

import "database/sql"

// DBProvider is implemented by relational mirror targets that expose a
// sql.DB handle, letting the replicator write to plain Postgres or a
// Supabase project interchangeably.
type DBProvider interface {
	DB() *sql.DB
}
