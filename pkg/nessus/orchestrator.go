// pkg/nessus/orchestrator.go
package nessus

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nesslaunch/nesslaunch/pkg/retry"
)

// LaunchScans authenticates once, then launches every given scan
// concurrently, each wrapped in the client's retry schedule.
//
// An empty id list is a documented no-op: no network activity occurs and
// nil is returned. Otherwise the API token fetch and the login happen
// exactly once, strictly before any fan-out; if either fails, that error is
// returned and no launch is attempted.
//
// Each scan runs in its own goroutine, fully isolated from its siblings.
// Per-scan outcomes (success, retry exhaustion, task fault) are reported
// through the event sink and never through the return value: once
// authentication has succeeded, LaunchScans returns nil after all tasks
// reach a terminal state.
func (c *Client) LaunchScans(ctx context.Context, scanIDs []uint32) error {
	batchID := uuid.NewString()

	if len(scanIDs) == 0 {
		c.sink.BatchEmpty(batchID)
		return nil
	}

	apiToken, err := c.fetchAPIToken(ctx)
	if err != nil {
		return fmt.Errorf("fetch api token: %w", err)
	}

	sessionToken, err := c.createSession(ctx, apiToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	cookie := "token=" + sessionToken

	c.sink.BatchStarted(batchID, len(scanIDs))

	var wg sync.WaitGroup
	for _, scanID := range scanIDs {
		wg.Add(1)

		go func(scanID uint32) {
			defer wg.Done()
			defer func() {
				// A panicking task must not take the batch down with it.
				if r := recover(); r != nil {
					c.sink.TaskFault(batchID, scanID, fmt.Sprint(r))
				}
			}()

			err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
				return c.launchScanOnce(ctx, scanID, apiToken, cookie)
			})
			if err != nil {
				c.sink.ScanFailed(batchID, scanID, err)
				return
			}
			c.sink.ScanLaunched(batchID, scanID)
		}(scanID)
	}

	wg.Wait()
	return nil
}
