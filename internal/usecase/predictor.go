package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TrendLens/internal/domain/models"
	domrepo "TrendLens/internal/domain/repository"
	"TrendLens/internal/services/regression"
	applogger "TrendLens/pkg/logger"
	"TrendLens/pkg/util"
)

// ErrInvalidWindow is returned for a history window whose start is not before its end.
var ErrInvalidWindow = errors.New("start must be before end")

// PredictorConfig holds the defaults applied to every prediction.
type PredictorConfig struct {
	Start      time.Time
	End        time.Time
	Interval   string
	TrainRatio float64
	MinPoints  int
}

// PredictParams selects what to predict. Zero fields fall back to PredictorConfig.
type PredictParams struct {
	Ticker     string
	Start      time.Time
	End        time.Time
	Interval   string
	TrainRatio float64
}

// PredictorUseCase fits a linear trend on the older part of a closing-price
// history and scores it against the most recent part.
type PredictorUseCase struct {
	source   domrepo.PriceSource
	recorder domrepo.RunRecorder
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	cfg      PredictorConfig
	now      func() time.Time
}

func NewPredictorUseCase(source domrepo.PriceSource, recorder domrepo.RunRecorder, metrics domrepo.Metrics, logger *applogger.Logger, cfg PredictorConfig) *PredictorUseCase {
	if logger == nil {
		logger = applogger.Nop()
	}
	cfg.Interval = domrepo.NormalizeInterval(cfg.Interval)
	if cfg.TrainRatio <= 0 || cfg.TrainRatio >= 1 {
		cfg.TrainRatio = 0.8
	}
	if cfg.MinPoints < 2 {
		cfg.MinPoints = 20
	}
	return &PredictorUseCase{
		source:   source,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Predict returns the test window's dates, actual closes and fitted values.
// Data availability failures are *models.TickerError.
func (uc *PredictorUseCase) Predict(ctx context.Context, p PredictParams) (*models.PredictionResponse, error) {
	started := uc.now()
	resp, run, err := uc.predict(ctx, uc.withDefaults(p))
	uc.observe(err, uc.now().Sub(started))
	if err != nil {
		return nil, err
	}

	uc.record(ctx, run)
	return resp, nil
}

func (uc *PredictorUseCase) withDefaults(p PredictParams) PredictParams {
	p.Ticker = util.NormalizeTicker(p.Ticker)
	if p.Start.IsZero() {
		p.Start = uc.cfg.Start
	}
	if p.End.IsZero() {
		p.End = uc.cfg.End
	}
	if p.Interval == "" {
		p.Interval = uc.cfg.Interval
	}
	p.Interval = domrepo.NormalizeInterval(p.Interval)
	if p.TrainRatio <= 0 || p.TrainRatio >= 1 {
		p.TrainRatio = uc.cfg.TrainRatio
	}
	return p
}

func (uc *PredictorUseCase) predict(ctx context.Context, p PredictParams) (*models.PredictionResponse, *models.PredictionRun, error) {
	if p.Ticker == "" {
		return nil, nil, fmt.Errorf("ticker required")
	}
	if !p.Start.Before(p.End) {
		return nil, nil, ErrInvalidWindow
	}

	uc.logger.Info("starting prediction",
		applogger.String("ticker", p.Ticker),
		applogger.String("start", util.FormatDate(p.Start)),
		applogger.String("end", util.FormatDate(p.End)),
	)

	bars, err := uc.source.Bars(ctx, p.Ticker, models.BarQuery{Start: p.Start, End: p.End, Interval: p.Interval})
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return nil, nil, &models.TickerError{Ticker: p.Ticker, Err: models.ErrNoData}
		}
		return nil, nil, fmt.Errorf("load prices: %w", err)
	}
	if len(bars) == 0 {
		return nil, nil, &models.TickerError{Ticker: p.Ticker, Err: models.ErrNoData}
	}
	if len(bars) < uc.cfg.MinPoints {
		return nil, nil, &models.TickerError{Ticker: p.Ticker, Err: models.ErrInsufficientData}
	}

	split := int(float64(len(bars)) * p.TrainRatio)
	if split >= len(bars) {
		return nil, nil, &models.TickerError{Ticker: p.Ticker, Err: models.ErrEmptyTestSet}
	}
	if split < 1 {
		return nil, nil, &models.TickerError{Ticker: p.Ticker, Err: models.ErrInsufficientData}
	}

	xs := make([]float64, len(bars))
	ys := make([]float64, len(bars))
	for i, b := range bars {
		xs[i] = util.DayOrdinal(b.Date)
		ys[i] = b.Close
	}

	model, err := regression.Fit(xs[:split], ys[:split])
	if err != nil {
		return nil, nil, fmt.Errorf("fit trend: %w", err)
	}

	test := bars[split:]
	resp := &models.PredictionResponse{
		Dates:     make([]string, len(test)),
		Actual:    ys[split:],
		Predicted: model.PredictAll(xs[split:]),
	}
	for i, b := range test {
		resp.Dates[i] = util.FormatDate(b.Date)
	}

	run := &models.PredictionRun{
		ID:        uuid.NewString(),
		Ticker:    p.Ticker,
		Interval:  p.Interval,
		Start:     util.FormatDate(p.Start),
		End:       util.FormatDate(p.End),
		Points:    len(bars),
		TrainSize: split,
		TestSize:  len(test),
		Slope:     model.Slope,
		Intercept: model.Intercept,
		RMSE:      regression.RMSE(resp.Actual, resp.Predicted),
		CreatedAt: uc.now().UTC(),
	}

	uc.logger.Info("prediction ready",
		applogger.String("ticker", p.Ticker),
		applogger.Int("points", len(bars)),
		applogger.Int("test_size", len(test)),
		applogger.Float64("rmse", run.RMSE),
	)
	return resp, run, nil
}

func (uc *PredictorUseCase) record(ctx context.Context, run *models.PredictionRun) {
	if uc.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.recorder.RecordRun(rctx, run); err != nil {
		uc.logger.Warn("record prediction run failed",
			applogger.String("ticker", run.Ticker),
			applogger.Error(err),
		)
		if uc.metrics != nil {
			uc.metrics.RecordError("record_run")
		}
	}
}

func (uc *PredictorUseCase) observe(err error, d time.Duration) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordPrediction(resultLabel(err), d.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrNoData):
		return "no_data"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrEmptyTestSet):
		return "empty_test_set"
	case errors.Is(err, ErrInvalidWindow):
		return "invalid_window"
	default:
		return "error"
	}
}
