package repository

import (
	"context"
	"fmt"

	"TrendLens/internal/domain/models"
)

// Publisher is the subset of pkg/kafka.Producer the recorder needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaRunRecorder publishes each run as a JSON event keyed by ticker.
type KafkaRunRecorder struct {
	pub   Publisher
	topic string
}

func NewKafkaRunRecorder(pub Publisher, topic string) *KafkaRunRecorder {
	return &KafkaRunRecorder{pub: pub, topic: topic}
}

func (r *KafkaRunRecorder) RecordRun(ctx context.Context, run *models.PredictionRun) error {
	if err := r.pub.Publish(ctx, r.topic, []byte(run.Ticker), run); err != nil {
		return fmt.Errorf("publish run: %w", err)
	}
	return nil
}

func (r *KafkaRunRecorder) Close() error {
	return r.pub.Close()
}
