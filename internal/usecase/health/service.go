package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable, so no search can run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. The database is the one hard
// dependency; embedding, reranker, and redis degrade the report only.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	reranker  RerankChecker
	cache     CachePinger
}

// New creates a Service. embedding, reranker, and cache can each be nil;
// their checks are then skipped.
func New(db DBPinger, embedding EmbeddingChecker, reranker RerankChecker, cache CachePinger) *Service {
	return &Service{db: db, embedding: embedding, reranker: reranker, cache: cache}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.reranker != nil {
		if err := s.reranker.HealthCheck(ctx); err != nil {
			checks["reranker"] = CheckError
		} else {
			checks["reranker"] = CheckOK
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["redis"] = CheckError
		} else {
			checks["redis"] = CheckOK
		}
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
