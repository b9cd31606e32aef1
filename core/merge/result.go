package merge

// Result reports how a batch was reconciled. Which counters are filled
// depends on the policy: Replace and Merge fill Replaced and Inserted,
// IgnoreExisting fills Ignored and Inserted.
//
// For a batch with no duplicate primary keys, Replaced (or Ignored) plus
// Inserted equals the batch size. Duplicate keys within one batch produce
// engine-defined counts.
type Result struct {
	// Replaced is the number of existing target rows overwritten.
	Replaced int64 `json:"replaced"`
	// Ignored is the number of staged rows skipped because their primary
	// key already existed in the target.
	Ignored int64 `json:"ignored"`
	// Inserted is the number of genuinely new rows added to the target.
	Inserted int64 `json:"inserted"`
	// Exact is false when the driver could not report affected-row counts
	// for one of the reconciliation statements. Counts are then best-effort:
	// unavailable counters stay zero and Inserted may include replacements.
	Exact bool `json:"exact"`
}
