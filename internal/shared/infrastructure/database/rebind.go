package database

import (
	"fmt"
	"strings"
)

// Rebind rewrites ? placeholders to $n for PostgreSQL. Queries are
// written once in SQLite style and rebound per driver.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
