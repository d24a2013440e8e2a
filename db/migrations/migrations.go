// Package migrations embeds the SQL that creates the users schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
