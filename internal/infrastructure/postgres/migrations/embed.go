// Package migrations holds the SQL schema of the ledger.
package migrations

import "embed"

// FS contains the up and down migration files.
//
//go:embed *.sql
var FS embed.FS
