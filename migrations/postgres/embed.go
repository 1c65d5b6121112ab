// Package migrations embeds the SQL migration files.
package migrations

import "embed"

// FS contains the postgres schema migrations, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
