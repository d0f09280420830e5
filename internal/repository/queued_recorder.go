package repository

import (
	"context"
	"fmt"
	"time"

	"TrendLens/internal/domain/models"
	domainrepo "TrendLens/internal/domain/repository"
	"TrendLens/pkg/queue"
)

// RunMessageType is the queue message type carrying a PredictionRun.
const RunMessageType = "prediction_run"

// RunQueue is the subset of pkg/queue.RedisQueue the recorder needs.
type RunQueue interface {
	queue.Publisher
	Stop(ctx context.Context) error
}

// QueuedRunRecorder defers recording to queue workers; the wrapped recorder
// does the actual write when the job runs.
type QueuedRunRecorder struct {
	queue       RunQueue
	inner       domainrepo.RunRecorder
	stopTimeout time.Duration
}

func NewQueuedRunRecorder(q RunQueue, inner domainrepo.RunRecorder) *QueuedRunRecorder {
	return &QueuedRunRecorder{queue: q, inner: inner, stopTimeout: 10 * time.Second}
}

func (r *QueuedRunRecorder) RecordRun(ctx context.Context, run *models.PredictionRun) error {
	if err := r.queue.Enqueue(ctx, RunMessageType, run); err != nil {
		return fmt.Errorf("enqueue run: %w", err)
	}
	return nil
}

// Unwrap returns the recorder the queue workers write to.
func (r *QueuedRunRecorder) Unwrap() domainrepo.RunRecorder { return r.inner }

// Close drains the workers before closing the wrapped recorder. When the
// workers do not finish in time the wrapped recorder stays open, since a
// job may still be writing to it.
func (r *QueuedRunRecorder) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()
	if err := r.queue.Stop(ctx); err != nil {
		return fmt.Errorf("stop queue: %w", err)
	}
	return r.inner.Close()
}

// RecordRunJob writes queued runs to a recorder.
type RecordRunJob struct {
	rec domainrepo.RunRecorder
}

func NewRecordRunJob(rec domainrepo.RunRecorder) *RecordRunJob {
	return &RecordRunJob{rec: rec}
}

func (j *RecordRunJob) Name() string { return "record_run" }
func (j *RecordRunJob) Type() string { return RunMessageType }

func (j *RecordRunJob) Handle(ctx context.Context, payload interface{}) error {
	run, err := queue.ParsePayload[models.PredictionRun](payload)
	if err != nil {
		return err
	}
	return j.rec.RecordRun(ctx, run)
}
