package models

import (
	"errors"
	"fmt"
	"time"
)

// PredictionRequest is the body posted to the prediction endpoint.
type PredictionRequest struct {
	Ticker string `json:"ticker"`
}

// PredictionResponse is the prediction endpoint's reply. Dates, Actual and
// Predicted are index-aligned; Error is only set on failure statuses.
type PredictionResponse struct {
	Dates     []string  `json:"dates,omitempty"`
	Actual    []float64 `json:"actual,omitempty"`
	Predicted []float64 `json:"predicted,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Bar is one closing price observation.
type Bar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// BarQuery selects a closing-price history window.
type BarQuery struct {
	Start    time.Time
	End      time.Time
	Interval string // 1d, 1wk, 1mo
}

// PredictionRun summarizes one served prediction for recording.
type PredictionRun struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Interval  string    `json:"interval"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Points    int       `json:"points"`
	TrainSize int       `json:"train_size"`
	TestSize  int       `json:"test_size"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	RMSE      float64   `json:"rmse"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNoData           = errors.New("no data")
	ErrInsufficientData = errors.New("insufficient data")
	ErrEmptyTestSet     = errors.New("empty test set")
)

// TickerError ties a data-availability failure to the ticker it concerns.
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoData):
		return fmt.Sprintf("No data found for ticker '%s'. Please check the symbol.", e.Ticker)
	case errors.Is(e.Err, ErrInsufficientData):
		return fmt.Sprintf("Not enough historical data for '%s' to create a prediction.", e.Ticker)
	case errors.Is(e.Err, ErrEmptyTestSet):
		return fmt.Sprintf("Not enough recent data for '%s' to form a valid test set.", e.Ticker)
	default:
		return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
	}
}

func (e *TickerError) Unwrap() error { return e.Err }
