package ottomatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Health statuses reported by the service.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Health reports the server's component health. Degraded and unhealthy
// reports come back as data, not as an error: the server answers
// /healthz with 503 only when search cannot run at all, and the body
// still carries the per-component breakdown.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("ottomatch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ottomatch: GET /healthz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, decodeAPIError(resp)
	}

	var out HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ottomatch: decode health response: %w", err)
	}
	return &out, nil
}
