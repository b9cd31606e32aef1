package merge

import (
	"context"
	"database/sql"

	"bulk-merge/core/schema"
)

// txnMode identifies who owns the transaction for one invocation.
type txnMode int

const (
	// autoManaged: the engine opens, commits and rolls back the transaction.
	autoManaged txnMode = iota
	// userManaged: the caller supplied the connection and transaction and
	// keeps full control over commit/rollback.
	userManaged
)

// opContext carries the per-invocation state the failure paths need: which
// transaction mode is active, the staging descriptor, and whether the
// staging table was physically created or already dropped. The created flag
// is the sole source of truth for whether cleanup has work to do.
//
// An opContext is owned by exactly one invocation and never escapes it.
type opContext struct {
	mode    txnMode
	staging *schema.Table
	created bool
	dropped bool
}

// execer is the statement surface the phases run on. *sql.Tx satisfies it.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowsAffected extracts the affected-row count from a statement result.
// The second return is false when the driver cannot report a count, in
// which case callers degrade to best-effort counters.
func rowsAffected(res sql.Result) (int64, bool) {
	if res == nil {
		return 0, false
	}
	n, err := res.RowsAffected()
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
