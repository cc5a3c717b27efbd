package dialect

import "strings"

type MySQL struct{}

var mysqlStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (m MySQL) Name() string {
	return "mysql"
}

func (m MySQL) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (m MySQL) QuoteString(s string) string {
	return "'" + mysqlStringEscaper.Replace(s) + "'"
}
