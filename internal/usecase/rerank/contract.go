package rerank

import "context"

// Scorer produces one raw relevance logit per document, in document order.
// The transport layer implements it against the cross-encoder HTTP API.
type Scorer interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}
