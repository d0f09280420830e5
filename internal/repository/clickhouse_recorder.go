package repository

import (
	"context"
	"database/sql"
	"fmt"

	"TrendLens/internal/domain/models"
	pkgch "TrendLens/pkg/clickhouse"
	applogger "TrendLens/pkg/logger"
)

// ClickHouseSchema creates the prediction run table.
var ClickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS prediction_runs (
		id           String,
		created_at   DateTime64(3, 'UTC'),
		ticker       LowCardinality(String),
		bar_interval LowCardinality(String),
		start_date   String,
		end_date     String,
		points       UInt32,
		train_size   UInt32,
		test_size    UInt32,
		slope        Float64,
		intercept    Float64,
		rmse         Float64
	) ENGINE = MergeTree
	ORDER BY (ticker, created_at)`,
}

// CHRunRecorder stores prediction runs in ClickHouse.
type CHRunRecorder struct {
	db     *sql.DB
	client *pkgch.Client
	l      *applogger.Logger
}

// NewCHRunRecorder creates the schema and returns a recorder owning client.
func NewCHRunRecorder(ctx context.Context, client *pkgch.Client, l *applogger.Logger) (*CHRunRecorder, error) {
	if err := client.InitSchema(ctx, ClickHouseSchema); err != nil {
		return nil, err
	}
	return &CHRunRecorder{db: client.DB(), client: client, l: l}, nil
}

func (r *CHRunRecorder) RecordRun(ctx context.Context, run *models.PredictionRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prediction_runs
			(id, created_at, ticker, bar_interval, start_date, end_date, points, train_size, test_size, slope, intercept, rmse)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Ticker, run.Interval, run.Start, run.End,
		uint32(run.Points), uint32(run.TrainSize), uint32(run.TestSize),
		run.Slope, run.Intercept, run.RMSE,
	)
	if err != nil {
		if r.l != nil {
			r.l.Error("clickhouse insert run error",
				applogger.String("ticker", run.Ticker),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *CHRunRecorder) RecentRuns(ctx context.Context, limit int) ([]models.PredictionRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, ticker, bar_interval, start_date, end_date,
		       toInt64(points), toInt64(train_size), toInt64(test_size), slope, intercept, rmse
		FROM prediction_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRun
	for rows.Next() {
		var (
			run                 models.PredictionRun
			points, train, test int64
		)
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Ticker, &run.Interval, &run.Start, &run.End,
			&points, &train, &test, &run.Slope, &run.Intercept, &run.RMSE); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Points, run.TrainSize, run.TestSize = int(points), int(train), int(test)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *CHRunRecorder) Close() error {
	return r.client.Close()
}
