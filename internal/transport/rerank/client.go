package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client calls a cross-encoder scoring service over HTTP
// (SiliconFlow/Jina-compatible /rerank contract).
type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
	logger *zap.Logger
}

// Config holds the cross-encoder service settings.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a cross-encoder scoring client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		http:   &http.Client{Timeout: timeout},
		logger: cfg.Logger,
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Model   string         `json:"model"`
	Results []rerankResult `json:"results"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Score returns one raw relevance score per document, in document order.
// The response may arrive sorted by relevance, so scores are re-placed by index.
func (c *Client) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/rerank", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rerank API returned status %d: %s", resp.StatusCode, string(body))
	}

	var respBody rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	if len(respBody.Results) != len(documents) {
		return nil, fmt.Errorf("rerank result count mismatch: sent %d, got %d",
			len(documents), len(respBody.Results))
	}

	scores := make([]float64, len(documents))
	for _, r := range respBody.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
		scores[r.Index] = r.RelevanceScore
	}

	return scores, nil
}

// HealthCheck probes the scoring endpoint with a minimal request.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if _, err := c.Score(ctx, "ping", []string{"pong"}); err != nil {
		return fmt.Errorf("rerank health check: %w", err)
	}
	return nil
}
