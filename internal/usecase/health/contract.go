package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// RerankChecker checks cross-encoder scoring service availability.
type RerankChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the Redis cache connection.
type CachePinger interface {
	Ping(ctx context.Context) error
}
