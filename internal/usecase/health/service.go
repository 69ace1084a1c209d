package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. Topics counts the labels of the
// loaded topic model so operators can spot a stale or empty model at a glance.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Topics int
}

// Service coordinates health checks over the pipeline's dependencies.
type Service struct {
	index     IndexPinger
	embedding EmbeddingChecker
	model     ModelInfo
}

// New creates a Service. embedding and model can be nil.
func New(index IndexPinger, embedding EmbeddingChecker, model ModelInfo) *Service {
	return &Service{index: index, embedding: embedding, model: model}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.index.Ping(ctx); err != nil {
		checks["index"] = CheckError
	} else {
		checks["index"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	topics := 0
	if s.model != nil {
		topics = len(s.model.Labels())
		if topics == 0 {
			checks["topic_model"] = CheckError
		} else {
			checks["topic_model"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Topics: topics}
}
