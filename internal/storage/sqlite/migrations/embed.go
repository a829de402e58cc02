// Package migrations embeds the SQL schema of the durable style store.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
