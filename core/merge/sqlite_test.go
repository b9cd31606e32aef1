package merge

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"bulk-merge/core/schema"
	"bulk-merge/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newSQLiteDB opens a throwaway file-backed SQLite database. A file (not
// :memory:) because the engine's failure-path cleanup opens a second
// connection, and each :memory: connection would see its own database.
func newSQLiteDB(t *testing.T) *sql.DB {
	path := filepath.Join(t.TempDir(), "merge.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedRecords creates the records table and fills ids 1-4 with desc "v1".
func seedRecords(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`CREATE TABLE "records" ("id" INTEGER, "desc" TEXT, "update_at" TEXT, PRIMARY KEY ("id"))`)
	require.NoError(t, err)
	for id := 1; id <= 4; id++ {
		_, err := db.Exec(`INSERT INTO "records" ("id", "desc", "update_at") VALUES (?, ?, ?)`,
			id, "v1", "T0")
		require.NoError(t, err)
	}
}

func newSQLiteEngine(t *testing.T, db *sql.DB, opts ...Option) *Engine {
	opts = append([]Option{WithDialect(schema.DialectSQLite)}, opts...)
	return New(db, opts...)
}

// allRecords reads the records table ordered by id.
func allRecords(t *testing.T, db *sql.DB) []Record {
	rows, err := db.Query(`SELECT "id", "desc", "update_at" FROM "records" ORDER BY "id"`)
	require.NoError(t, err)
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var id any
		var desc, updateAt any
		require.NoError(t, rows.Scan(&id, &desc, &updateAt))
		out = append(out, Record{
			"id":        utils.ToInt(id),
			"desc":      utils.ToString(desc),
			"update_at": utils.ToString(updateAt),
		})
	}
	require.NoError(t, rows.Err())
	return out
}

// assertNoStagingTables is the conformance check: after any invocation,
// successful or failed, no table with the staging prefix may exist.
func assertNoStagingTables(t *testing.T, db *sql.DB) {
	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ?`,
		schema.StagingPrefix+"%")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		t.Errorf("orphaned staging table: %s", name)
	}
	require.NoError(t, rows.Err())
}

func v2Batch() []Record {
	return []Record{
		{"id": 3, "desc": "v2", "update_at": "T1"},
		{"id": 4, "desc": "v2", "update_at": "T1"},
		{"id": 5, "desc": "v2", "update_at": "T1"},
		{"id": 6, "desc": "v2", "update_at": "T1"},
	}
}

func TestReplaceScenarioSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	seedRecords(t, db)
	engine := newSQLiteEngine(t, db)

	res, err := engine.Replace(context.Background(), targetTable(), v2Batch())
	require.NoError(t, err)

	// Conservation: replaced + inserted == len(batch)
	assert.Equal(t, int64(2), res.Replaced)
	assert.Equal(t, int64(2), res.Inserted)
	assert.True(t, res.Exact)

	got := allRecords(t, db)
	require.Len(t, got, 6)
	for _, rec := range got {
		id := rec["id"].(int)
		if id <= 2 {
			assert.Equal(t, "v1", rec["desc"], "id %d must be untouched", id)
		} else {
			assert.Equal(t, "v2", rec["desc"], "id %d must be overwritten", id)
		}
	}
	assertNoStagingTables(t, db)
}

func TestIgnoreExistingScenarioSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	seedRecords(t, db)
	engine := newSQLiteEngine(t, db)
	ctx := context.Background()

	res, err := engine.IgnoreExisting(ctx, targetTable(), v2Batch())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Ignored)
	assert.Equal(t, int64(2), res.Inserted)

	got := allRecords(t, db)
	require.Len(t, got, 6)
	for _, rec := range got {
		id := rec["id"].(int)
		if id <= 4 {
			assert.Equal(t, "v1", rec["desc"], "existing id %d must be untouched", id)
		} else {
			assert.Equal(t, "v2", rec["desc"], "new id %d must be inserted", id)
		}
	}

	// Idempotence: a second run inserts nothing.
	res, err = engine.IgnoreExisting(ctx, targetTable(), v2Batch())
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Ignored)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Len(t, allRecords(t, db), 6)
	assertNoStagingTables(t, db)
}

func TestMergeColumnIsolationSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	_, err := db.Exec(`CREATE TABLE "records" ("id" INTEGER, "desc" TEXT, "update_at" TEXT, PRIMARY KEY ("id"))`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "records" VALUES (1, 'v1', 'T0')`)
	require.NoError(t, err)

	engine := newSQLiteEngine(t, db)
	batch := []Record{
		{"id": 1, "desc": "v2", "update_at": "T1"},
		{"id": 2, "desc": "v2", "update_at": "T1"},
	}
	res, err := engine.Merge(context.Background(), targetTable(), batch, []string{"update_at"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Replaced)
	assert.Equal(t, int64(1), res.Inserted)

	got := allRecords(t, db)
	require.Len(t, got, 2)
	// Conflicting row: desc preserved, update_at taken from the batch.
	assert.Equal(t, Record{"id": 1, "desc": "v1", "update_at": "T1"}, got[0])
	// New row: inserted in full.
	assert.Equal(t, Record{"id": 2, "desc": "v2", "update_at": "T1"}, got[1])
	assertNoStagingTables(t, db)
}

func TestRollbackCompletenessSQLite(t *testing.T) {
	faults := map[string]FaultInjectionConfig{
		"BeforeStagingCreate": {BeforeStagingCreate: true},
		"BeforeStagingLoad":   {BeforeStagingLoad: true},
		"BeforeReconcile":     {BeforeReconcile: true},
		"BeforeStagingDrop":   {BeforeStagingDrop: true},
	}

	for name, cfg := range faults {
		t.Run(name, func(t *testing.T) {
			db := newSQLiteDB(t)
			seedRecords(t, db)
			before := allRecords(t, db)

			engine := newSQLiteEngine(t, db, WithFaultInjection(cfg))
			_, err := engine.Replace(context.Background(), targetTable(), v2Batch())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInjectedFault)

			// The target's row set is unchanged and no staging table survives.
			assert.Equal(t, before, allRecords(t, db))
			assertNoStagingTables(t, db)
			assert.Empty(t, engine.Registry().Names())
		})
	}
}

func TestUserManagedSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	seedRecords(t, db)
	engine := newSQLiteEngine(t, db)
	ctx := context.Background()

	t.Run("CallerRollbackUndoesMerge", func(t *testing.T) {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()
		tx, err := conn.BeginTx(ctx, nil)
		require.NoError(t, err)

		res, err := engine.Replace(ctx, targetTable(), v2Batch(), WithTransaction(conn, tx))
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Replaced)

		require.NoError(t, tx.Rollback())
		got := allRecords(t, db)
		require.Len(t, got, 4)
		for _, rec := range got {
			assert.Equal(t, "v1", rec["desc"])
		}
		assertNoStagingTables(t, db)
	})

	t.Run("CallerCommitAppliesMerge", func(t *testing.T) {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()
		tx, err := conn.BeginTx(ctx, nil)
		require.NoError(t, err)

		_, err = engine.Replace(ctx, targetTable(), v2Batch(), WithTransaction(conn, tx))
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		assert.Len(t, allRecords(t, db), 6)
		assertNoStagingTables(t, db)
	})
}

func TestDuplicatePrimaryKeysInBatchSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	seedRecords(t, db)
	engine := newSQLiteEngine(t, db)

	// Duplicate keys within one batch conflict inside the staging table
	// itself; the load fails and the target stays untouched.
	batch := []Record{
		{"id": 9, "desc": "a", "update_at": "T1"},
		{"id": 9, "desc": "b", "update_at": "T1"},
	}
	_, err := engine.Replace(context.Background(), targetTable(), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStagingLoad)
	assert.Len(t, allRecords(t, db), 4)
	assertNoStagingTables(t, db)
}

func TestConcurrentStagingNamesSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	seedRecords(t, db)
	reg := schema.NewRegistry()
	engine := newSQLiteEngine(t, db, WithRegistry(reg))
	ctx := context.Background()

	// Sequential invocations with explicit distinct staging names, the way
	// sub-second concurrent callers are expected to run.
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("%srun%d_records", schema.StagingPrefix, i)
		_, err := engine.IgnoreExisting(ctx, targetTable(), v2Batch(), WithStagingName(name))
		require.NoError(t, err)
	}
	assert.Empty(t, reg.Names())
	assertNoStagingTables(t, db)
}
