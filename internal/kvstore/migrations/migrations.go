// Package migrations embeds the goose migrations for the local key-value
// store schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
