// Package migrations embeds the goose schema migrations for every SQL
// backend. Each dialect lives in its own directory.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
