// Package migrations holds the Go migrations whose DDL differs per driver.
// The plain SQL migrations live beside them and are embedded by package db.
package migrations

// dialect is the goose dialect of the database being migrated.
var dialect string

// SetDialect selects the DDL variant used by the Go migrations. db.Migrate
// calls it before goose.Up; unknown values get the sqlite3 variant.
func SetDialect(d string) {
	dialect = d
}
