package merge

// FaultInjectionConfig arms deterministic failures at phase boundaries.
// Test harnesses use it to verify rollback and cleanup behavior; production
// engines keep the zero value, which disables every point.
//
// An armed point makes the corresponding phase fail with ErrInjectedFault
// (wrapped in that phase's error) before the phase touches the database.
type FaultInjectionConfig struct {
	// BeforeStagingCreate fires before the staging CREATE TABLE.
	BeforeStagingCreate bool
	// BeforeStagingLoad fires before the bulk INSERT into staging.
	BeforeStagingLoad bool
	// BeforeReconcile fires before the policy's reconciliation statements.
	BeforeReconcile bool
	// BeforeStagingDrop fires before the success-path DROP TABLE.
	BeforeStagingDrop bool
}
