// pkg/nessus/launch.go
package nessus

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// launchScanOnce issues a single launch request for the given scan id.
// Exactly one HTTP call is made; retry is the orchestrator's concern.
// apiToken and cookie (the `token=<session>` X-Cookie value) are shared
// read-only by every concurrent caller.
func (c *Client) launchScanOnce(ctx context.Context, scanID uint32, apiToken, cookie string) error {
	url := fmt.Sprintf("%s/scans/%d/launch", c.host, scanID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return &NetworkError{Op: fmt.Sprintf("launch scan %d", scanID), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Api-Token", apiToken)
	req.Header.Set("X-Cookie", cookie)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: fmt.Sprintf("launch scan %d", scanID), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the transport can reuse the connection.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &LaunchError{ScanID: scanID, Status: resp.StatusCode}
	}

	return nil
}
