// Package migrations embeds the PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Up lists the forward migrations in the order they must be applied.
var Up = []string{
	"001_create_todos.up.sql",
}
