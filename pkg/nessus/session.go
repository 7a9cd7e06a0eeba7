// pkg/nessus/session.go
package nessus

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

type sessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

// createSession exchanges the configured credentials plus the API token for
// a short-lived session token. The session token lives for one batch and is
// never refreshed mid-batch.
func (c *Client) createSession(ctx context.Context, apiToken string) (string, error) {
	payload, err := json.Marshal(sessionRequest{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return "", &ParseError{What: "session request", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/session", bytes.NewReader(payload))
	if err != nil {
		return "", &NetworkError{Op: "create session", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Api-Token", apiToken)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "create session", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read session response", Err: err}
	}

	var parsed sessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ParseError{What: "session response", Reason: "invalid JSON: " + err.Error()}
	}
	if parsed.Token == "" {
		return "", &ParseError{What: "session response", Reason: "missing 'token' field"}
	}

	return parsed.Token, nil
}
