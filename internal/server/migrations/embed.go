// Package migrations embeds the server's goose SQL migration files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
