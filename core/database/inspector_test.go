package database

import (
	"testing"

	"bulk-merge/core/schema"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// Create a test table
	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "text", colMap["name"].Type)
	assert.Empty(t, colMap["name"].Key)
	assert.Equal(t, "text", colMap["description"].Type)

	// Non-existent table: PRAGMA table_info returns an empty result
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestDescribe(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	err = db.Exec(`CREATE TABLE records (id INTEGER PRIMARY KEY, "desc" TEXT, update_at DATETIME)`).Error
	assert.NoError(t, err)

	t.Run("SinglePrimaryKey", func(t *testing.T) {
		table, err := Describe(db, "records")
		assert.NoError(t, err)
		assert.Equal(t, "records", table.Name)
		assert.Equal(t, "id", table.PrimaryKey)
		assert.Equal(t, []string{"id", "desc", "update_at"}, table.ColumnNames())
	})

	t.Run("MissingTable", func(t *testing.T) {
		_, err := Describe(db, "non_existent")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("NoPrimaryKey", func(t *testing.T) {
		err := db.Exec("CREATE TABLE no_pk (a TEXT, b TEXT)").Error
		assert.NoError(t, err)

		_, err = Describe(db, "no_pk")
		assert.ErrorIs(t, err, schema.ErrInvalidSchema)
	})

	t.Run("CompositePrimaryKey", func(t *testing.T) {
		err := db.Exec("CREATE TABLE composite_pk (a INTEGER, b INTEGER, PRIMARY KEY (a, b))").Error
		assert.NoError(t, err)

		_, err = Describe(db, "composite_pk")
		assert.ErrorIs(t, err, schema.ErrInvalidSchema)
	})
}
