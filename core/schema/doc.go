// Package schema describes relational tables for the merge engine.
//
// A Table is an ordered list of columns plus exactly one primary key column.
// Descriptors are either built by hand or discovered from a live database
// through the core/database inspector.
//
// # Staging Tables
//
// CloneForStaging derives a staging descriptor from a target table: same
// columns, same types, same primary key, but a unique name carrying the
// StagingPrefix. Staging tables are intentionally unconstrained beyond the
// primary key so raw candidate data loads without conflicts.
//
// # Registry
//
// The Registry tracks staging descriptors that are (or may be) physically
// present in the database. It is an explicit, caller-owned object so two
// concurrent merge invocations never share bookkeeping state.
//
// # Usage
//
//	target := &schema.Table{
//	    Name:       "records",
//	    Columns:    []schema.Column{{Name: "id", Type: "INTEGER"}, {Name: "desc", Type: "TEXT"}},
//	    PrimaryKey: "id",
//	}
//	if err := target.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	staging := schema.CloneForStaging(target, schema.StagingName(target.Name))
package schema
