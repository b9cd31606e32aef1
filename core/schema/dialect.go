package schema

// Dialect selects identifier quoting for generated SQL. The merge engine
// otherwise emits ANSI statements that both supported engines accept.
type Dialect string

const (
	// DialectMySQL quotes identifiers with backticks.
	DialectMySQL Dialect = "mysql"
	// DialectSQLite quotes identifiers with double quotes.
	DialectSQLite Dialect = "sqlite"
)

// Quote wraps an identifier in the dialect's quoting characters.
func (d Dialect) Quote(ident string) string {
	if d == DialectMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}
