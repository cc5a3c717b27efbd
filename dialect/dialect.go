package dialect

import (
	"fmt"
	"strings"
)

// Dialect controls how identifiers and string literals are quoted when a
// template is rendered for a particular database.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// QuoteString wraps s in single quotes, escaping what the database needs
	// escaped inside a string literal.
	QuoteString(s string) string
}

// ByName resolves a dialect from its configuration name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return NewMySQLDialect(), nil
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	default:
		return nil, fmt.Errorf("unknown dialect: %s", name)
	}
}
