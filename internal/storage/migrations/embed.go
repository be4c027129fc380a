package migrations

import "embed"

// Schemas holds the embedded migration files, one directory per database.
//
//go:embed postgres/*.sql clickhouse/*.sql
var Schemas embed.FS
