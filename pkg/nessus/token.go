// pkg/nessus/token.go
package nessus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// fetchAPIToken retrieves nessus6.js from the server and extracts the
// rotating API token embedded in it. The v= query parameter only busts
// caches; its value carries no meaning.
func (c *Client) fetchAPIToken(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/nessus6.js?v=%d", c.host, time.Now().Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NetworkError{Op: "fetch nessus6.js", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "fetch nessus6.js", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read nessus6.js", Err: err}
	}

	return extractAPIToken(string(body))
}

// extractAPIToken pulls the API token out of the served script text. The
// token is embedded in executable JavaScript, not structured data, so this
// is deliberately pattern-based: split on `:"`, find the fragment that
// mentions getApiToken, split that fragment on `"` and take the third
// element. The surrounding script is otherwise opaque and may change freely
// between server versions as long as this shape survives.
func extractAPIToken(body string) (string, error) {
	parts := strings.Split(body, `:"`)

	var fragment string
	found := false
	for _, p := range parts {
		if strings.Contains(p, "getApiToken") {
			fragment = p
			found = true
			break
		}
	}
	if !found {
		return "", &ParseError{What: "nessus6.js", Reason: "getApiToken not found"}
	}

	fields := strings.Split(fragment, `"`)
	if len(fields) < 3 {
		return "", &ParseError{What: "nessus6.js", Reason: "unexpected format around getApiToken"}
	}

	return fields[2], nil
}
