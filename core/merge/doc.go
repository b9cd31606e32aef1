// Package merge implements set-based bulk reconciliation of a candidate
// batch of records against a single-primary-key table.
//
// Instead of row-by-row statements, the engine stages the whole batch in a
// disposable staging table and reconciles it into the target with a handful
// of set-based statements. For large batches this is an order of magnitude
// faster than per-row upserts and avoids engine-specific ON CONFLICT syntax.
//
// # Conflict Policies
//
// Three policies decide what happens when a staged primary key already
// exists in the target:
//
//  1. Replace: the existing row is deleted and the staged row inserted in
//     full (complete overwrite, including columns the batch left NULL).
//  2. IgnoreExisting: the staged row is skipped; only rows with unseen
//     primary keys are inserted.
//  3. Merge: only an explicit list of columns is overwritten on the
//     existing row; everything else is preserved. Non-conflicting rows are
//     inserted in full.
//
// # Phases
//
// Every invocation runs the same ordered phases: create staging table, bulk
// load the batch, execute the policy's reconciliation statements, drop the
// staging table. A failure at any phase aborts the rest, rolls back the
// transaction (in auto-managed mode) and removes the staging table through
// a fresh connection, then propagates the original error. The staging table
// is never observable after an invocation completes, successful or not.
//
// # Transactions
//
// By default the engine opens and owns its transaction (auto-managed). A
// caller composing the merge into a larger unit of work supplies its own
// connection and transaction with WithTransaction; the engine then never
// commits or rolls back — that stays the caller's responsibility.
//
// # Usage
//
//	engine := merge.New(sqlDB,
//	    merge.WithDialect(schema.DialectSQLite),
//	    merge.WithLogger(log),
//	)
//	res, err := engine.Replace(ctx, target, batch)
//	if err != nil {
//	    return err
//	}
//	log.Info("batch reconciled",
//	    zap.Int64("replaced", res.Replaced),
//	    zap.Int64("inserted", res.Inserted),
//	)
package merge
