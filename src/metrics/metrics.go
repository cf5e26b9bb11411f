// Package metrics defines the instrumentation hooks used by the ledger core,
// the receipt scanner and the notifier. Backends live in subpackages.
package metrics

import "time"

type Collector interface {
	// RecordMutation observes one ledger unit of work (create, update,
	// bulk_delete, create_account, set_default, recurring).
	RecordMutation(op string, success bool, duration time.Duration)
	RecordRateLimited()
	// RecordReceiptScan outcome is one of "ok", "fallback", "format_error",
	// "error".
	RecordReceiptScan(outcome string, duration time.Duration)
	RecordEmail(success bool)
}

// NoOpCollector is used when metrics are not wired.
type NoOpCollector struct{}

func (NoOpCollector) RecordMutation(op string, success bool, duration time.Duration) {}
func (NoOpCollector) RecordRateLimited()                                              {}
func (NoOpCollector) RecordReceiptScan(outcome string, duration time.Duration)      {}
func (NoOpCollector) RecordEmail(success bool)                                      {}
