package commands

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/nesslaunch/nesslaunch/cmd/nesslaunch/internal/format"
	"github.com/nesslaunch/nesslaunch/pkg/config"
	"github.com/nesslaunch/nesslaunch/pkg/nessus"
	"github.com/nesslaunch/nesslaunch/pkg/retry"
)

func newLaunchCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "launch [scan-id...]",
		Short: "Trigger one or more predefined scans",
		Long: `Authenticates against the configured Nessus server and launches the given
scans concurrently. With no arguments, the configured default scan id list
(launch.scan_ids) is used.

The exit code reflects the authentication phase only; individual scan
failures are reported in the logs and the summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.With().Str("command", "launch").Logger()

			cfg, ok := config.FromContext(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not loaded")
			}

			scanIDs, err := scanIDsFromArgs(args, cfg.Launch)
			if err != nil {
				return err
			}

			rec := newRecordingSink(nessus.NewLogSink())

			client, err := nessus.NewClient(cfg.Nessus,
				nessus.WithRetryConfig(retryConfigFrom(cfg.Launch)),
				nessus.WithEventSink(rec),
			)
			if err != nil {
				return err
			}

			logger.Info().Uints32("scan_ids", scanIDs).Str("host", client.Host()).Msg("launching scans")

			if err := client.LaunchScans(cmd.Context(), scanIDs); err != nil {
				logger.Error().Err(err).Msg("batch authentication failed")
				return err
			}

			if len(scanIDs) > 0 {
				return format.PrintBatchSummary(cmd.OutOrStdout(), rec.Summary(), !noColor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// scanIDsFromArgs resolves the scan id set for a batch: explicit arguments
// win, otherwise the configured default list. Explicit arguments must be
// numeric; the configured list is parsed leniently.
func scanIDsFromArgs(args []string, launch config.LaunchConfig) ([]uint32, error) {
	if len(args) == 0 {
		return config.ParseScanIDs(launch.ScanIDs), nil
	}

	ids := make([]uint32, 0, len(args))
	for _, arg := range args {
		id, err := cast.ToUint32E(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid scan id %q: must be a number", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func retryConfigFrom(launch config.LaunchConfig) retry.Config {
	cfg := retry.DefaultConfig()
	if launch.RetryAttempts > 0 {
		cfg.MaxAttempts = launch.RetryAttempts
	}
	if launch.RetryInitialWait > 0 {
		cfg.InitialWait = launch.RetryInitialWait
	}
	if launch.RetryMaxWait > 0 {
		cfg.MaxWait = launch.RetryMaxWait
	}
	return cfg
}

// recordingSink forwards every event to the wrapped sink and keeps counts
// for the end-of-run summary. Safe for concurrent use.
type recordingSink struct {
	next nessus.EventSink

	mu       sync.Mutex
	launched int
	faulted  int
	errors   []format.ErrorDetail
}

func newRecordingSink(next nessus.EventSink) *recordingSink {
	return &recordingSink{next: next}
}

func (r *recordingSink) BatchStarted(batchID string, scanCount int) {
	r.next.BatchStarted(batchID, scanCount)
}

func (r *recordingSink) BatchEmpty(batchID string) {
	r.next.BatchEmpty(batchID)
}

func (r *recordingSink) ScanLaunched(batchID string, scanID uint32) {
	r.mu.Lock()
	r.launched++
	r.mu.Unlock()
	r.next.ScanLaunched(batchID, scanID)
}

func (r *recordingSink) ScanFailed(batchID string, scanID uint32, err error) {
	r.mu.Lock()
	r.errors = append(r.errors, format.ErrorDetail{ScanID: scanID, Error: err.Error()})
	r.mu.Unlock()
	r.next.ScanFailed(batchID, scanID, err)
}

func (r *recordingSink) TaskFault(batchID string, scanID uint32, reason string) {
	r.mu.Lock()
	r.faulted++
	r.mu.Unlock()
	r.next.TaskFault(batchID, scanID, reason)
}

func (r *recordingSink) Summary() format.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return format.Summary{
		Launched: r.launched,
		Failed:   len(r.errors),
		Faulted:  r.faulted,
		Errors:   append([]format.ErrorDetail(nil), r.errors...),
	}
}
