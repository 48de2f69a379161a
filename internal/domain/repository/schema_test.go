package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The column lists the repositories SELECT and Scan must stay in lockstep
// with the shipped DDL; a drifting column breaks every query against a fresh
// database.
func TestColumnListsMatchSchema(t *testing.T) {
	ddl := loadSchema(t)

	tables := map[string]string{
		"users":       userColumns,
		"problems":    problemColumns,
		"submissions": submissionColumns,
	}
	for table, columns := range tables {
		defined := schemaColumns(t, ddl, table)
		for _, col := range splitColumns(columns) {
			require.Contains(t, defined, col,
				"column %s.%s is selected but missing from scripts/schema.sql", table, col)
		}
	}
}

// Every mutating user query stamps updated_at, so the table must carry it.
func TestUsersTableCarriesUpdatedAt(t *testing.T) {
	defined := schemaColumns(t, loadSchema(t), "users")
	require.Contains(t, defined, "updated_at")
}

func loadSchema(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "scripts", "schema.sql"))
	require.NoError(t, err)
	return string(data)
}

var createTableRe = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\n\);`)

func schemaColumns(t *testing.T, ddl, table string) map[string]bool {
	t.Helper()
	for _, m := range createTableRe.FindAllStringSubmatch(ddl, -1) {
		if m[1] != table {
			continue
		}
		cols := map[string]bool{}
		for _, line := range strings.Split(m[2], "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			switch strings.ToUpper(fields[0]) {
			case "UNIQUE", "PRIMARY", "FOREIGN":
				continue
			}
			cols[fields[0]] = true
		}
		return cols
	}
	t.Fatalf("table %s not found in scripts/schema.sql", table)
	return nil
}

func splitColumns(list string) []string {
	var cols []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
