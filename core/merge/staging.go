package merge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// createStaging issues the staging table's CREATE TABLE on the invocation's
// transaction. On success the created flag becomes true; from that point on
// the failure paths must remove the table.
func (e *Engine) createStaging(ctx context.Context, tx execer, octx *opContext) error {
	if e.faults.BeforeStagingCreate {
		return fmt.Errorf("%w: %w before staging create", ErrStagingCreate, ErrInjectedFault)
	}
	if _, err := tx.ExecContext(ctx, e.createSQL(octx)); err != nil {
		return fmt.Errorf("%w: %w", ErrStagingCreate, err)
	}
	octx.created = true
	return nil
}

// loadStaging bulk-loads the whole batch with a single multi-row INSERT.
func (e *Engine) loadStaging(ctx context.Context, tx execer, octx *opContext, batch []Record) error {
	if e.faults.BeforeStagingLoad {
		return fmt.Errorf("%w: %w before staging load", ErrStagingLoad, ErrInjectedFault)
	}
	query, values := e.loadSQL(octx, batch)
	if _, err := tx.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("%w: %w", ErrStagingLoad, err)
	}
	return nil
}

// dropStaging removes the staging table on the success path, using the same
// transaction that created and loaded it.
func (e *Engine) dropStaging(ctx context.Context, tx execer, octx *opContext) error {
	if e.faults.BeforeStagingDrop {
		return fmt.Errorf("%w: %w before staging drop", ErrStagingDrop, ErrInjectedFault)
	}
	query := fmt.Sprintf("DROP TABLE %s", e.dialect.Quote(octx.staging.Name))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: %w", ErrStagingDrop, err)
	}
	octx.dropped = true
	e.registry.Remove(octx.staging.Name)
	return nil
}

// cleanupStaging removes the staging table on failure paths. It deliberately
// uses a fresh connection from the pool rather than the failed invocation's
// connection: some engines auto-commit DDL outside the surrounding
// transaction, so a rolled-back transaction can leave the table physically
// present, and the failed connection may be unusable anyway.
//
// Cleanup failures are logged and swallowed so they never mask the original
// error. The registry entry is removed regardless, to avoid leaking
// bookkeeping state when the physical drop fails.
func (e *Engine) cleanupStaging(octx *opContext) {
	defer e.registry.Remove(octx.staging.Name)

	if !octx.created || octx.dropped {
		return
	}
	// Independent context: the invocation's context may already be canceled,
	// and that must not prevent cleanup.
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", e.dialect.Quote(octx.staging.Name))
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		e.log.Warn("staging table cleanup failed",
			zap.String("staging_table", octx.staging.Name),
			zap.Error(err),
		)
		return
	}
	octx.dropped = true
}

// createSQL renders the staging CREATE TABLE: every target column with its
// original type, the primary key, and nothing else. Staging tables carry no
// further constraints so raw candidate data always loads.
func (e *Engine) createSQL(octx *opContext) string {
	t := octx.staging
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, fmt.Sprintf("%s %s", e.dialect.Quote(col.Name), col.Type))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", e.dialect.Quote(t.PrimaryKey)))
	return fmt.Sprintf("CREATE TABLE %s (%s)", e.dialect.Quote(t.Name), strings.Join(defs, ", "))
}

// loadSQL renders the multi-row INSERT for the batch and flattens the
// record values into positional arguments.
func (e *Engine) loadSQL(octx *opContext, batch []Record) (string, []any) {
	t := octx.staging
	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = e.dialect.Quote(col.Name)
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ") + ")"
	rows := make([]string, len(batch))
	for i := range batch {
		rows[i] = row
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		e.dialect.Quote(t.Name), strings.Join(cols, ", "), strings.Join(rows, ", "))
	return query, args(t, batch)
}
