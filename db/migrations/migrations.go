// Package migrations embeds the SQL schema so both the migration
// binary and the ingestion startup check run from the same source.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
