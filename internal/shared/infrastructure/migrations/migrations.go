package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFS embed.FS

// Run executes all migrations for the connection's driver in order.
// Statements are idempotent (CREATE TABLE IF NOT EXISTS) so reruns are
// safe.
func Run(ctx context.Context, conn database.Connection) error {
	dir := "sqlite"
	if conn.Driver() == database.DriverPostgres {
		dir = "postgres"
	}

	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, file := range upFiles {
		migration, err := migrationFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		for _, stmt := range splitStatements(string(migration)) {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("execute migration %s: %w", file, err)
			}
		}
	}

	return nil
}

// splitStatements breaks a migration file into single statements. The
// schema contains no procedural SQL, so splitting on semicolons is safe.
func splitStatements(migration string) []string {
	var stmts []string
	for _, stmt := range strings.Split(migration, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
