// Package migrations embeds the schema of the SQL repositories.
package migrations

import "embed"

// FS holds one directory of ordered .sql files per database dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)
