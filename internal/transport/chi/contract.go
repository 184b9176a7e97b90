package chi

import (
	"context"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/request"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	healthuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/health"
)

// SearchService runs the search pipeline for validated requests.
type SearchService interface {
	Search(ctx context.Context, req request.Request) (result.Response, error)
	Similar(ctx context.Context, req request.SimilarRequest) (result.Response, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
