package ports

// SentLedger is the persistent record of trade identities that have already
// been announced. It survives restarts and is an at-least-once guard: a
// false negative (re-announcing after manual file edits) is acceptable, a
// false positive within the retention window is not.
type SentLedger interface {
	// Has reports whether the identity has been recorded.
	Has(id string) bool
	// Record adds the identity and persists synchronously. Idempotent.
	Record(id string) error
}
