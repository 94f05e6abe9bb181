package database

import "embed"

// MigrationFS holds the schema migrations applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
