package dialect

import "strings"

// SQLite accepts MySQL-style backtick identifiers, so templates written for
// MySQL render unchanged.
type SQLite struct{}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (SQLite) Name() string {
	return "sqlite"
}

func (SQLite) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (SQLite) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
