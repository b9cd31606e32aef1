package schema

import (
	"fmt"
	"time"
)

// StagingPrefix is the name prefix shared by every staging table the engine
// creates. After any merge invocation, no table starting with this prefix
// should remain; leftover prefixed tables indicate a crashed invocation.
const StagingPrefix = "staging_"

// StagingName derives a staging table name from the target table name and
// the current UTC time. Two invocations within the same second collide;
// callers running at that concurrency must supply their own unique names.
func StagingName(table string) string {
	ts := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s%s_%s", StagingPrefix, ts, table)
}

// CloneForStaging returns a staging descriptor structurally identical to
// target: same column order, names and types, and the same single primary
// key. No foreign keys or uniqueness constraints are carried over, so the
// staging table accepts raw candidate data without load-time conflicts.
//
// The target must already have passed Validate. The clone shares no memory
// with the target descriptor.
func CloneForStaging(target *Table, name string) *Table {
	cols := make([]Column, len(target.Columns))
	copy(cols, target.Columns)
	return &Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: target.PrimaryKey,
	}
}
