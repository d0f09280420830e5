package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"TrendLens/internal/domain/models"
	applogger "TrendLens/pkg/logger"
)

// SQLiteRecorder stores prediction runs in a local SQLite file.
type SQLiteRecorder struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewSQLiteRecorder opens (or creates) the database at path and migrates it.
func NewSQLiteRecorder(ctx context.Context, path string, l *applogger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, l: l}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if l != nil {
		l.Info("sqlite recorder opened", applogger.String("path", path))
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prediction_runs (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			ticker     TEXT NOT NULL,
			bar_interval TEXT,
			start_date TEXT,
			end_date   TEXT,
			points     INTEGER,
			train_size INTEGER,
			test_size  INTEGER,
			slope      REAL,
			intercept  REAL,
			rmse       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON prediction_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker ON prediction_runs(ticker)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *models.PredictionRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prediction_runs
			(id, created_at, ticker, bar_interval, start_date, end_date, points, train_size, test_size, slope, intercept, rmse)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixMilli(), run.Ticker, run.Interval, run.Start, run.End,
		run.Points, run.TrainSize, run.TestSize, run.Slope, run.Intercept, run.RMSE,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(ctx context.Context, limit int) ([]models.PredictionRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, ticker, bar_interval, start_date, end_date, points, train_size, test_size, slope, intercept, rmse
		FROM prediction_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRun
	for rows.Next() {
		var (
			run     models.PredictionRun
			created int64
		)
		if err := rows.Scan(&run.ID, &created, &run.Ticker, &run.Interval, &run.Start, &run.End,
			&run.Points, &run.TrainSize, &run.TestSize, &run.Slope, &run.Intercept, &run.RMSE); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
