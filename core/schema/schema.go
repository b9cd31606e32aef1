package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema indicates a table descriptor that cannot be used for
// staged merges: no primary key, a primary key that is not a declared
// column, or an empty column list.
var ErrInvalidSchema = errors.New("schema: invalid table descriptor")

// Column describes a single table column. Type is the SQL type as the
// target engine renders it (e.g. "INTEGER", "VARCHAR(255)").
type Column struct {
	Name string
	Type string
}

// Table describes a relational table with exactly one primary key column.
type Table struct {
	// Name is the table name, unquoted.
	Name string
	// Columns is the ordered column list. Order is preserved when cloning
	// so staged INSERT ... SELECT statements line up positionally.
	Columns []Column
	// PrimaryKey is the name of the single primary key column.
	PrimaryKey string
}

// Validate checks the single-primary-key invariant before any staging work
// begins. It returns an error wrapping ErrInvalidSchema when the descriptor
// is unusable.
func (t *Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty table name", ErrInvalidSchema)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidSchema, t.Name)
	}
	if t.PrimaryKey == "" {
		return fmt.Errorf("%w: table %s has no primary key", ErrInvalidSchema, t.Name)
	}
	if !t.HasColumn(t.PrimaryKey) {
		return fmt.Errorf("%w: primary key %s is not a column of table %s", ErrInvalidSchema, t.PrimaryKey, t.Name)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate column %s in table %s", ErrInvalidSchema, c.Name, t.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// HasColumn reports whether the table declares a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
