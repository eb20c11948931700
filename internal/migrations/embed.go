// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

//go:embed sql/001_initial.sql
var InitialSQL string

// All lists migrations in the order they must be applied. Entry i moves the
// schema to version i+1.
var All = []string{InitialSQL}
