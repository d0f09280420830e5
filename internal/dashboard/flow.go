package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"TrendLens/internal/domain/models"
	"TrendLens/internal/domain/repository"
	applogger "TrendLens/pkg/logger"
)

// State is the request flow's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(l *applogger.Logger) FlowOption {
	return func(f *Flow) { f.logger = l }
}

// WithMetrics records each submission outcome.
func WithMetrics(m repository.Metrics) FlowOption {
	return func(f *Flow) { f.metrics = m }
}

// WithRequestTimeout bounds the round trip. Zero means no bound.
func WithRequestTimeout(d time.Duration) FlowOption {
	return func(f *Flow) { f.timeout = d }
}

// Flow turns a submit action into one prediction round trip and updates the
// view and chart with the result. At most one submission runs at a time.
type Flow struct {
	view      View
	presenter *Presenter
	api       PredictionAPI
	logger    *applogger.Logger
	metrics   repository.Metrics
	timeout   time.Duration
	state     atomic.Int32
}

// NewFlow wires a flow to its view, presenter and endpoint.
func NewFlow(view View, presenter *Presenter, api PredictionAPI, opts ...FlowOption) *Flow {
	f := &Flow{
		view:      view,
		presenter: presenter,
		api:       api,
		logger:    applogger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current lifecycle state.
func (f *Flow) State() State { return State(f.state.Load()) }

// Submit runs the flow once. The returned error is what the error area now
// shows, or ErrBusy when another submission is in flight and nothing changed.
func (f *Flow) Submit(ctx context.Context) error {
	return f.run(ctx, nil)
}

// SubmitTicker fills the ticker input and runs the flow. The input is only
// written once the submission is accepted, so a busy rejection leaves the
// view untouched.
func (f *Flow) SubmitTicker(ctx context.Context, ticker string) error {
	return f.run(ctx, func() { f.view.SetTickerValue(ticker) })
}

func (f *Flow) run(ctx context.Context, fill func()) error {
	if !f.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		f.record(ErrBusy)
		return ErrBusy
	}
	defer f.state.Store(int32(StateIdle))

	if fill != nil {
		fill()
	}
	err := f.submit(ctx)
	f.record(err)
	return err
}

func (f *Flow) submit(ctx context.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(f.view.TickerValue()))
	if ticker == "" {
		err := &ValidationError{Message: emptyTickerMessage}
		f.view.SetErrorMessage(displayMessage(err))
		return err
	}

	f.view.SetSubmitEnabled(false)
	f.view.SetSubmitLabel(BusySubmitLabel)
	f.view.SetResultTitle("")
	f.view.SetErrorMessage("")
	f.presenter.Hide()
	defer func() {
		f.view.SetSubmitEnabled(true)
		f.view.SetSubmitLabel(DefaultSubmitLabel)
	}()

	if err := f.roundTrip(ctx, ticker); err != nil {
		f.logger.Error("prediction failed",
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		f.view.SetErrorMessage(displayMessage(err))
		return err
	}
	return nil
}

func (f *Flow) roundTrip(ctx context.Context, ticker string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	reply, err := f.api.Predict(ctx, models.PredictionRequest{Ticker: ticker})
	if err != nil {
		return err
	}

	f.logger.Debug("prediction response",
		applogger.String("ticker", ticker),
		applogger.Int("status", reply.Status),
		applogger.Any("body", reply.Body),
	)

	if !reply.OK() {
		return newServerError(reply.Status, reply.Body.Error)
	}
	if len(reply.Body.Predicted) == 0 {
		return &NoDataError{}
	}

	f.view.SetResultTitle(fmt.Sprintf("Showing prediction results for %s", ticker))
	f.presenter.Draw(reply.Body.Dates, reply.Body.Actual, reply.Body.Predicted)
	return nil
}

func (f *Flow) record(err error) {
	if f.metrics != nil {
		f.metrics.RecordFlowSubmission(outcome(err))
	}
}
