package settlement

// progress tracks how far a redemption got. It exists so failures can be
// classified after the fact: an error with progress below consumed rolled
// back cleanly, while an error at consumed means the transaction outcome is
// ambiguous and must be flagged for manual reconciliation.
type progress string

const (
	progressVerified       progress = "verified"
	progressLedgerApplied  progress = "ledger_applied"
	progressRecordsWritten progress = "records_written"
	progressConsumed       progress = "consumed"
)
