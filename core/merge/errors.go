package merge

import "errors"

// Precondition errors. These fail fast before any database work, so no
// cleanup is needed when they are returned. Schema preconditions are
// reported as schema.ErrInvalidSchema by the schema package.
var (
	// ErrInvalidTxn indicates an inconsistent connection/transaction pair:
	// exactly one of the two was supplied.
	ErrInvalidTxn = errors.New("merge: connection and transaction must be supplied together or not at all")

	// ErrInvalidColumns indicates a malformed Merge column list: empty,
	// containing the primary key, or naming a column absent from the target.
	ErrInvalidColumns = errors.New("merge: invalid merge column list")
)

// Phase errors. Each wraps the underlying statement failure; any of them
// triggers best-effort staging cleanup before being returned.
var (
	ErrStagingCreate = errors.New("merge: staging table creation failed")
	ErrStagingLoad   = errors.New("merge: staging bulk load failed")
	ErrReconcile     = errors.New("merge: reconciliation statement failed")
	ErrStagingDrop   = errors.New("merge: staging table drop failed")
)

// ErrInjectedFault is the failure forced by an armed fault-injection point.
// It is always wrapped in the phase error of the point that fired.
var ErrInjectedFault = errors.New("merge: injected fault")
