package database

import (
	"errors"
	"fmt"
	"strings"

	"bulk-merge/core/schema"

	"gorm.io/gorm"
)

// ErrTableNotFound is returned by Describe when the table does not exist.
var ErrTableNotFound = errors.New("table not found")

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table,
// including which columns form the primary key (Key == "PRI").
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			}
			if col.Pk > 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	// Raw "SHOW COLUMNS" for MySQL gives exact type strings, which the
	// staging CREATE TABLE reuses verbatim.
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	// Normalize names and types to lowercase
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// Describe discovers a table descriptor for the merge engine: ordered
// columns with their SQL types and the single primary key column. It fails
// for missing tables and for composite primary keys, which the engine does
// not support.
func Describe(db *gorm.DB, tableName string) (*schema.Table, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	table := &schema.Table{Name: tableName}
	var pks []string
	for _, col := range columns {
		table.Columns = append(table.Columns, schema.Column{Name: col.Field, Type: col.Type})
		if col.Key == "PRI" {
			pks = append(pks, col.Field)
		}
	}
	if len(pks) > 1 {
		return nil, fmt.Errorf("%w: table %s has a composite primary key (%s)",
			schema.ErrInvalidSchema, tableName, strings.Join(pks, ", "))
	}
	if len(pks) == 1 {
		table.PrimaryKey = pks[0]
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
