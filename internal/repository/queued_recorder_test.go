package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"TrendLens/internal/domain/models"
)

type fakeQueue struct {
	types    []string
	payloads []interface{}
	err      error
	stopErr  error
	stopped  bool
}

func (q *fakeQueue) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	q.types = append(q.types, msgType)
	q.payloads = append(q.payloads, payload)
	return q.err
}

func (q *fakeQueue) Stop(context.Context) error {
	q.stopped = true
	return q.stopErr
}

type memRecorder struct {
	runs   []models.PredictionRun
	closed bool
}

func (m *memRecorder) RecordRun(_ context.Context, run *models.PredictionRun) error {
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memRecorder) Close() error {
	m.closed = true
	return nil
}

func TestQueuedRunRecorderEnqueues(t *testing.T) {
	q := &fakeQueue{}
	inner := &memRecorder{}
	rec := NewQueuedRunRecorder(q, inner)

	run := &models.PredictionRun{ID: "r1", Ticker: "AAPL"}
	if err := rec.RecordRun(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.types) != 1 || q.types[0] != RunMessageType {
		t.Fatalf("unexpected enqueued types %v", q.types)
	}
	if len(inner.runs) != 0 {
		t.Fatalf("inner recorder should only be written by the job")
	}
	if rec.Unwrap() != inner {
		t.Fatalf("Unwrap should return the inner recorder")
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.stopped || !inner.closed {
		t.Fatalf("close should stop the queue and close the inner recorder")
	}
}

func TestQueuedRunRecorderKeepsInnerOpenOnStopTimeout(t *testing.T) {
	q := &fakeQueue{stopErr: context.DeadlineExceeded}
	inner := &memRecorder{}
	rec := NewQueuedRunRecorder(q, inner)

	if err := rec.Close(); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if inner.closed {
		t.Fatalf("inner recorder closed while workers may still write to it")
	}
}

func TestQueuedRunRecorderWrapsEnqueueError(t *testing.T) {
	cause := errors.New("queue not running")
	rec := NewQueuedRunRecorder(&fakeQueue{err: cause}, &memRecorder{})
	if err := rec.RecordRun(context.Background(), &models.PredictionRun{}); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestRecordRunJobDecodesPayload(t *testing.T) {
	inner := &memRecorder{}
	job := NewRecordRunJob(inner)

	raw, _ := json.Marshal(models.PredictionRun{ID: "r2", Ticker: "MSFT", Points: 40})
	if err := job.Handle(context.Background(), json.RawMessage(raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.runs) != 1 || inner.runs[0].Ticker != "MSFT" || inner.runs[0].Points != 40 {
		t.Fatalf("unexpected recorded runs %+v", inner.runs)
	}

	if err := job.Handle(context.Background(), json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
