// Package database holds the SQL schema migrations, embedded into the binary.
package database

import "embed"

//go:embed migration/*.sql
var Migrations embed.FS
