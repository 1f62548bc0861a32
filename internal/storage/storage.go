// Package storage provides a SQL-backed budget store for SQLite and Postgres.
package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/budgets/internal/service"
)

// Dialect selects the SQL flavor spoken by a database.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect resolves a configured dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3", "":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownDialect, s)
	}
}

// placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Storage implements service.BudgetStore over database/sql.
type Storage struct {
	db      *sql.DB
	dialect Dialect
}

var _ service.BudgetStore = (*Storage)(nil)

// Dialect returns the SQL dialect of the underlying database.
func (s *Storage) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}
