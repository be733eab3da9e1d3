// Package dialect provides identifier quoting and bind-marker conventions
// per database provider.
package dialect

import (
	"fmt"
	"strings"
)

// Provider names accepted by ByName.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Dialect quotes identifiers and renders positional bind markers for one
// SQL provider. Implementations are stateless and safe for concurrent use.
type Dialect interface {
	Name() string
	Escape(ident string) string
	Placeholder(n int) string // 1-based
}

// ByName returns the dialect for a provider name. Unknown providers
// default to Postgres, matching the most common adapter target.
func ByName(provider string) Dialect {
	switch strings.ToLower(provider) {
	case MySQL:
		return mysqlDialect{}
	case SQLite, "sqlite3":
		return sqliteDialect{}
	default:
		return postgresDialect{}
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return Postgres }

func (postgresDialect) Escape(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (postgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return MySQL }

func (mysqlDialect) Escape(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (mysqlDialect) Placeholder(int) string { return "?" }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return SQLite }

func (sqliteDialect) Escape(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (sqliteDialect) Placeholder(int) string { return "?" }
