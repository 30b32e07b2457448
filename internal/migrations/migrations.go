package migrations

import "embed"

// Files contains the SQL migrations embedded into the binary, using
// a flat naming convention (001_init.sql, 002_...) so the runner can
// apply them in lexical order.
//
//go:embed *.sql
var Files embed.FS
