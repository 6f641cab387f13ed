// Package migrations embeds the goose SQL migrations so cmd/migrate and
// integration tests run them without relying on a filesystem path.
package migrations

import "embed"

// FS holds all *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
