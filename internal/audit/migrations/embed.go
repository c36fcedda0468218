package migrations

import "embed"

// FS embeds the audit_records schema migrations for golang-migrate's iofs
// source driver.
//
//go:embed *.sql
var FS embed.FS
