package merge

import (
	"fmt"

	"bulk-merge/core/schema"
)

// Record is one row of the candidate batch: an unordered mapping from
// column name to value. The primary key must be present in every record.
// Columns missing from a record are staged as NULL.
type Record map[string]any

// validateBatch checks that every record carries the primary key field.
// This runs before any database work; a missing key is a precondition
// failure, not a runtime one.
func validateBatch(target *schema.Table, batch []Record) error {
	for i, rec := range batch {
		if _, ok := rec[target.PrimaryKey]; !ok {
			return fmt.Errorf("%w: record %d is missing primary key %s",
				schema.ErrInvalidSchema, i, target.PrimaryKey)
		}
	}
	return nil
}

// args flattens the batch into statement arguments, one value per staging
// column per record, in declaration order.
func args(staging *schema.Table, batch []Record) []any {
	out := make([]any, 0, len(batch)*len(staging.Columns))
	for _, rec := range batch {
		for _, col := range staging.Columns {
			out = append(out, rec[col.Name])
		}
	}
	return out
}
