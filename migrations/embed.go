// Package migrations embeds the development schema applied by cmd/migrate.
// Production tables are written by the ranking pipeline.
package migrations

import "embed"

// FS holds the numbered up/down SQL files
//
//go:embed *.sql
var FS embed.FS
