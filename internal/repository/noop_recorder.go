package repository

import (
	"context"

	"TrendLens/internal/domain/models"
)

// NoopRecorder discards runs; used when no recorder is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) RecordRun(context.Context, *models.PredictionRun) error { return nil }
func (NoopRecorder) Close() error                                         { return nil }
