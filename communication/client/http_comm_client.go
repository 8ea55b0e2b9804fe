package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nash/communication"
)

var ErrRemote = errors.New("client: solve failed on server")

type Client struct {
	serverURL string
	http      *http.Client
}

// NewClient initializes and returns a new Client.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      &http.Client{},
	}
}

// Solve posts req to /solve. When the server reports a failure the partial
// response is returned together with an ErrRemote error.
func (c *Client) Solve(ctx context.Context, req communication.SolveRequest) (*communication.SolveResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solve request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/solve", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create solve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach solve server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read solve response: %w", err)
	}
	var out communication.SolveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), ErrRemote)
		}
		return nil, fmt.Errorf("failed to decode solve response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		return &out, fmt.Errorf("status %d: %s: %w", resp.StatusCode, out.Error, ErrRemote)
	}
	return &out, nil
}
