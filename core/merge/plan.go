package merge

import (
	"context"
	"fmt"
	"strings"

	"bulk-merge/core/schema"
)

// plan is the closed set of conflict policies. Each implementation turns a
// staged batch into the set-based statements that reconcile it into the
// target, and accounts for the rows it touched. The staging phases around
// a plan are shared by the engine.
type plan interface {
	// name identifies the policy in logs.
	name() string
	// reconcile runs the policy's statements on the invocation's
	// transaction. batchSize is the number of staged records, used for
	// subtraction-based counters.
	reconcile(ctx context.Context, tx execer, d schema.Dialect, target, staging *schema.Table, batchSize int) (Result, error)
}

// replacePlan overwrites conflicting target rows entirely: delete every
// target row whose primary key appears in staging, then insert all staged
// rows.
type replacePlan struct{}

func (replacePlan) name() string { return "replace" }

func (replacePlan) reconcile(ctx context.Context, tx execer, d schema.Dialect, target, staging *schema.Table, batchSize int) (Result, error) {
	pk := d.Quote(target.PrimaryKey)
	del := fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s)",
		d.Quote(target.Name), pk, pk, d.Quote(staging.Name))
	delRes, err := tx.ExecContext(ctx, del)
	if err != nil {
		return Result{}, fmt.Errorf("%w: delete conflicting rows: %w", ErrReconcile, err)
	}
	replaced, replacedOK := rowsAffected(delRes)

	cols := quotedColumns(d, target)
	ins := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		d.Quote(target.Name), cols, cols, d.Quote(staging.Name))
	insRes, err := tx.ExecContext(ctx, ins)
	if err != nil {
		return Result{}, fmt.Errorf("%w: insert staged rows: %w", ErrReconcile, err)
	}
	total, totalOK := rowsAffected(insRes)

	// Every inserted row either fills a just-deleted slot or is new, so the
	// genuinely-new count is total minus replaced. When either count is
	// unavailable the result degrades to best-effort: the delete count
	// reports as zero and Inserted keeps whatever the driver could tell us.
	res := Result{Replaced: replaced, Exact: replacedOK && totalOK}
	if totalOK {
		if replacedOK {
			res.Inserted = total - replaced
		} else {
			res.Inserted = total
		}
	}
	return res, nil
}

// ignorePlan inserts only staged rows whose primary key has no match in the
// target, found with a LEFT JOIN anti-join. Conflicting rows are untouched.
type ignorePlan struct{}

func (ignorePlan) name() string { return "ignore-existing" }

func (ignorePlan) reconcile(ctx context.Context, tx execer, d schema.Dialect, target, staging *schema.Table, batchSize int) (Result, error) {
	inserted, insertedOK, err := insertMissing(ctx, tx, d, target, staging)
	if err != nil {
		return Result{}, err
	}
	res := Result{Inserted: inserted, Exact: insertedOK}
	if insertedOK {
		res.Ignored = int64(batchSize) - inserted
	}
	return res, nil
}

// selectivePlan updates only the listed columns of conflicting target rows
// from the staged row, leaving every other column untouched, then inserts
// the non-conflicting staged rows in full.
type selectivePlan struct {
	columns []string
}

func (selectivePlan) name() string { return "selective-merge" }

func (p selectivePlan) reconcile(ctx context.Context, tx execer, d schema.Dialect, target, staging *schema.Table, batchSize int) (Result, error) {
	pk := d.Quote(target.PrimaryKey)
	qt := d.Quote(target.Name)
	qs := d.Quote(staging.Name)

	sets := make([]string, len(p.columns))
	for i, col := range p.columns {
		qc := d.Quote(col)
		sets[i] = fmt.Sprintf("%s = (SELECT s.%s FROM %s AS s WHERE s.%s = %s.%s)",
			qc, qc, qs, pk, qt, pk)
	}
	upd := fmt.Sprintf("UPDATE %s SET %s WHERE %s.%s IN (SELECT %s FROM %s)",
		qt, strings.Join(sets, ", "), qt, pk, pk, qs)
	updRes, err := tx.ExecContext(ctx, upd)
	if err != nil {
		return Result{}, fmt.Errorf("%w: update merge columns: %w", ErrReconcile, err)
	}
	replaced, replacedOK := rowsAffected(updRes)

	inserted, insertedOK, err := insertMissing(ctx, tx, d, target, staging)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Replaced: replaced,
		Inserted: inserted,
		Exact:    replacedOK && insertedOK,
	}, nil
}

// insertMissing inserts staged rows with no primary-key match in the target,
// shared by the ignore and selective policies.
func insertMissing(ctx context.Context, tx execer, d schema.Dialect, target, staging *schema.Table) (int64, bool, error) {
	pk := d.Quote(target.PrimaryKey)
	qt := d.Quote(target.Name)
	qs := d.Quote(staging.Name)

	cols := target.ColumnNames()
	quoted := make([]string, len(cols))
	sel := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
		sel[i] = "s." + d.Quote(c)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s AS s LEFT JOIN %s AS t ON s.%s = t.%s WHERE t.%s IS NULL",
		qt, strings.Join(quoted, ", "), strings.Join(sel, ", "), qs, qt, pk, pk, pk)
	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, false, fmt.Errorf("%w: insert missing rows: %w", ErrReconcile, err)
	}
	n, ok := rowsAffected(res)
	return n, ok, nil
}

// quotedColumns renders the comma-separated quoted column list of a table.
func quotedColumns(d schema.Dialect, t *schema.Table) string {
	names := t.ColumnNames()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return strings.Join(quoted, ", ")
}
