package merge

import (
	"context"
	"database/sql"
	"fmt"
)

// txnModeFor validates the connection/transaction pairing. Exactly both or
// neither must be supplied; anything else fails before any database work.
func txnModeFor(co *callOptions) (txnMode, error) {
	switch {
	case co.conn != nil && co.tx != nil:
		return userManaged, nil
	case co.conn == nil && co.tx == nil:
		return autoManaged, nil
	default:
		return 0, ErrInvalidTxn
	}
}

// runTxn executes body under the invocation's transaction mode and routes
// failures to the right rollback/cleanup path.
//
// Auto-managed: the engine opens a dedicated connection and transaction,
// commits on success, and on failure rolls back, cleans up the staging
// table through a fresh connection, and re-propagates the original error.
//
// User-managed: body runs on the caller's transaction. The engine never
// commits or rolls it back; on failure it only cleans up the staging table
// (again on a fresh connection, since the caller's transaction may already
// be poisoned) before returning the original error.
func (e *Engine) runTxn(ctx context.Context, octx *opContext, co *callOptions, body func(tx *sql.Tx) (Result, error)) (Result, error) {
	if octx.mode == userManaged {
		res, err := body(co.tx)
		if err != nil {
			e.cleanupStaging(octx)
			return Result{}, err
		}
		return res, nil
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		// Nothing was created yet; cleanup only drops the registry entry.
		e.cleanupStaging(octx)
		return Result{}, fmt.Errorf("merge: acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		e.cleanupStaging(octx)
		return Result{}, fmt.Errorf("merge: begin transaction: %w", err)
	}

	res, err := body(tx)
	if err != nil {
		_ = tx.Rollback()
		e.cleanupStaging(octx)
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		// A failed commit behaves like a rollback on the engine side; the
		// staging table may have survived if DDL auto-committed.
		e.cleanupStaging(octx)
		return Result{}, fmt.Errorf("merge: commit: %w", err)
	}
	return res, nil
}
