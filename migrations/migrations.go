// Package migrations embeds the SQL schema for the relational backends.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialect directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
