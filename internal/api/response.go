package api

import (
	"github.com/kurihiro0119/community-console/internal/domain"
)

// batchRunResponse is a batch run with its aggregate counts
type batchRunResponse struct {
	*domain.BatchRun
	Summary domain.BatchSummary `json:"summary"`
	Outcome string              `json:"outcome"`
}

func newBatchRunResponse(run *domain.BatchRun) batchRunResponse {
	return batchRunResponse{
		BatchRun: run,
		Summary:  run.Summary(),
		Outcome:  run.Outcome(),
	}
}
