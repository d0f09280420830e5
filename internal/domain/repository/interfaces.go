package repository

import (
	"context"

	"TrendLens/internal/domain/models"
)

// PriceSource yields closing prices ordered oldest first.
type PriceSource interface {
	Bars(ctx context.Context, ticker string, q models.BarQuery) ([]models.Bar, error)
}

// RunRecorder persists served predictions. Implementations must be safe for
// concurrent use.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.PredictionRun) error
	Close() error
}

type Metrics interface {
	RecordPrediction(result string, seconds float64)
	RecordFlowSubmission(outcome string)
	RecordCacheLookup(hit bool)
	RecordError(kind string)
}

// RunLister is implemented by recorders that can read runs back.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]models.PredictionRun, error)
}
