package ottomatch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Search runs a hybrid search over the vehicle inventory.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("ottomatch: query required")
	}

	var out SearchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Similar returns vehicles similar to the one with the given id.
// A limit <= 0 uses the server default.
func (c *Client) Similar(ctx context.Context, id string, limit int) (*SearchResponse, error) {
	if id == "" {
		return nil, errors.New("ottomatch: vehicle id required")
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/v1/vehicles/" + url.PathEscape(id) + "/similar"

	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
