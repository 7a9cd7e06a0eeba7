// pkg/nessus/sink.go
package nessus

import "github.com/rs/zerolog/log"

// EventSink receives batch lifecycle events. Every per-scan outcome is
// delivered to the sink exactly once; none is silently dropped. The sink's
// methods may be called from concurrent goroutines, one call per scan, so
// implementations must be safe for concurrent use.
type EventSink interface {
	// BatchStarted is emitted once per non-empty batch, after
	// authentication succeeds and before any launch attempt.
	BatchStarted(batchID string, scanCount int)

	// BatchEmpty is emitted when a batch is invoked with no scan ids.
	BatchEmpty(batchID string)

	// ScanLaunched is emitted when a scan's launch succeeded.
	ScanLaunched(batchID string, scanID uint32)

	// ScanFailed is emitted when a scan exhausted its retry budget.
	ScanFailed(batchID string, scanID uint32, err error)

	// TaskFault is emitted when a launch goroutine failed to run to
	// completion for a reason unrelated to the HTTP call itself.
	TaskFault(batchID string, scanID uint32, reason string)
}

// logSink is the default EventSink; it writes structured events through the
// global zerolog logger.
type logSink struct{}

// NewLogSink returns the default zerolog-backed event sink.
func NewLogSink() EventSink { return logSink{} }

func (logSink) BatchStarted(batchID string, scanCount int) {
	log.Info().Str("batch_id", batchID).Int("scan_count", scanCount).Msg("starting scan launch batch")
}

func (logSink) BatchEmpty(batchID string) {
	log.Info().Str("batch_id", batchID).Msg("no scan ids provided; nothing to launch")
}

func (logSink) ScanLaunched(batchID string, scanID uint32) {
	log.Info().Str("batch_id", batchID).Uint32("scan_id", scanID).Msg("scan launched successfully")
}

func (logSink) ScanFailed(batchID string, scanID uint32, err error) {
	log.Error().Str("batch_id", batchID).Uint32("scan_id", scanID).Err(err).Msg("scan launch failed after retries")
}

func (logSink) TaskFault(batchID string, scanID uint32, reason string) {
	log.Error().Str("batch_id", batchID).Uint32("scan_id", scanID).Str("reason", reason).Msg("launch task fault")
}
