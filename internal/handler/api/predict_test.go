package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"TrendLens/internal/domain/models"
	"TrendLens/internal/service/ratelimit"
	"TrendLens/internal/usecase"
	xhttp "TrendLens/pkg/http"
	xlogger "TrendLens/pkg/logger"
)

type stubSource struct {
	bars []models.Bar
	err  error
}

func (s *stubSource) Bars(context.Context, string, models.BarQuery) ([]models.Bar, error) {
	return s.bars, s.err
}

type stubLister struct {
	runs []models.PredictionRun
}

func (s *stubLister) RecentRuns(_ context.Context, limit int) ([]models.PredictionRun, error) {
	if limit < len(s.runs) {
		return s.runs[:limit], nil
	}
	return s.runs, nil
}

func trendBars(n int) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: 150 + float64(i)}
	}
	return out
}

func newServer(src *stubSource, limiter *ratelimit.Limiter, runs *stubLister) *echo.Echo {
	uc := usecase.NewPredictorUseCase(src, nil, nil, nil, usecase.PredictorConfig{
		Start:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		TrainRatio: 0.8,
		MinPoints:  20,
	})
	var h *PredictHandler
	if runs != nil {
		h = NewPredictHandler(xlogger.Nop(), uc, limiter, runs)
	} else {
		h = NewPredictHandler(xlogger.Nop(), uc, limiter, nil)
	}
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) models.PredictionResponse {
	t.Helper()
	var out models.PredictionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPredictSuccess(t *testing.T) {
	e := newServer(&stubSource{bars: trendBars(30)}, nil, nil)

	rec := post(e, "application/json; charset=utf-8", `{"ticker":" aapl "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if len(out.Dates) != 6 || len(out.Actual) != 6 || len(out.Predicted) != 6 {
		t.Fatalf("unexpected sizes %d/%d/%d", len(out.Dates), len(out.Actual), len(out.Predicted))
	}
	if out.Dates[0] != "2024-01-25" || out.Error != "" {
		t.Fatalf("unexpected body %+v", out)
	}
}

func TestPredictRequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		message     string
	}{
		{"not json", "text/plain", `ticker=AAPL`, http.StatusUnsupportedMediaType, "Invalid request: Content-Type must be application/json"},
		{"missing content type", "", `{"ticker":"AAPL"}`, http.StatusUnsupportedMediaType, "Invalid request: Content-Type must be application/json"},
		{"missing ticker", "application/json", `{}`, http.StatusBadRequest, "Ticker symbol must be a non-empty string."},
		{"blank ticker", "application/json", `{"ticker":"   "}`, http.StatusBadRequest, "Ticker symbol must be a non-empty string."},
		{"numeric ticker", "application/json", `{"ticker":42}`, http.StatusBadRequest, "Ticker symbol must be a non-empty string."},
		{"bad ratio", "application/json", `{"ticker":"AAPL","train_ratio":1.5}`, http.StatusBadRequest, "train_ratio must be less than 1"},
		{"bad window", "application/json", `{"ticker":"AAPL","start":"2024-05-01","end":"2024-01-01"}`, http.StatusBadRequest, "start must be before end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(&stubSource{bars: trendBars(30)}, nil, nil)
			rec := post(e, tt.contentType, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if out := decode(t, rec); out.Error != tt.message {
				t.Fatalf("unexpected error %q", out.Error)
			}
		})
	}
}

func TestPredictDomainErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     *stubSource
		status  int
		message string
	}{
		{"unknown ticker", &stubSource{err: models.ErrNoData}, http.StatusNotFound, "No data found for ticker 'ZZZZ'. Please check the symbol."},
		{"short history", &stubSource{bars: trendBars(5)}, http.StatusNotFound, "Not enough historical data for 'ZZZZ' to create a prediction."},
		{"upstream failure", &stubSource{err: errors.New("connection reset")}, http.StatusInternalServerError, "An unexpected internal server error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newServer(tt.src, nil, nil), "application/json", `{"ticker":"zzzz"}`)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if out := decode(t, rec); out.Error != tt.message {
				t.Fatalf("unexpected error %q", out.Error)
			}
		})
	}
}

func TestPredictRateLimited(t *testing.T) {
	e := newServer(&stubSource{bars: trendBars(30)}, ratelimit.New(1, 0.001), nil)

	if rec := post(e, "application/json", `{"ticker":"AAPL"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	rec := post(e, "application/json", `{"ticker":"AAPL"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRuns(t *testing.T) {
	e := newServer(&stubSource{}, nil, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without history, got %d", rec.Code)
	}

	lister := &stubLister{runs: []models.PredictionRun{{ID: "1", Ticker: "AAPL"}, {ID: "2", Ticker: "MSFT"}}}
	e = newServer(&stubSource{}, nil, lister)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Runs []models.PredictionRun `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Runs) != 1 || out.Runs[0].Ticker != "AAPL" {
		t.Fatalf("unexpected runs %+v", out.Runs)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs?limit=1000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit, got %d", rec.Code)
	}
}

func newHandler(src *stubSource, limiter *ratelimit.Limiter) *PredictHandler {
	uc := usecase.NewPredictorUseCase(src, nil, nil, nil, usecase.PredictorConfig{
		Start:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		TrainRatio: 0.8,
		MinPoints:  20,
	})
	return NewPredictHandler(xlogger.Nop(), uc, limiter, nil)
}

func TestLocalMatchesEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		src     *stubSource
		ticker  string
		status  int
		message string
	}{
		{"blank ticker", &stubSource{bars: trendBars(30)}, "  ", http.StatusBadRequest, "Ticker symbol must be a non-empty string."},
		{"unknown ticker", &stubSource{err: models.ErrNoData}, "zzzz", http.StatusNotFound, "No data found for ticker 'ZZZZ'. Please check the symbol."},
		{"upstream failure", &stubSource{err: errors.New("connection reset")}, "AAPL", http.StatusInternalServerError, "An unexpected internal server error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := newHandler(tt.src, nil).Local("k").Predict(context.Background(), models.PredictionRequest{Ticker: tt.ticker})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reply.Status != tt.status || reply.Body.Error != tt.message {
				t.Fatalf("unexpected reply %d %q", reply.Status, reply.Body.Error)
			}
		})
	}

	reply, err := newHandler(&stubSource{bars: trendBars(30)}, nil).Local("k").Predict(context.Background(), models.PredictionRequest{Ticker: "aapl"})
	if err != nil || !reply.OK() || len(reply.Body.Predicted) != 6 {
		t.Fatalf("unexpected success reply %+v (%v)", reply, err)
	}
}

func TestLocalLimitsPerKey(t *testing.T) {
	h := newHandler(&stubSource{bars: trendBars(30)}, ratelimit.New(1, 0.001))
	req := models.PredictionRequest{Ticker: "AAPL"}

	if reply, _ := h.Local("a").Predict(context.Background(), req); !reply.OK() {
		t.Fatalf("first request for a should pass, got %d", reply.Status)
	}
	if reply, _ := h.Local("b").Predict(context.Background(), req); !reply.OK() {
		t.Fatalf("b has its own bucket, got %d", reply.Status)
	}
	reply, _ := h.Local("a").Predict(context.Background(), req)
	if reply.Status != http.StatusTooManyRequests || reply.Body.Error != "Too many requests. Please slow down." {
		t.Fatalf("expected 429 for a, got %d %q", reply.Status, reply.Body.Error)
	}
}

func TestForwardedForDoesNotResetBucket(t *testing.T) {
	h := newHandler(&stubSource{bars: trendBars(30)}, ratelimit.New(1, 0.001))
	srv := xhttp.NewServer(xlogger.Nop(), []xhttp.Handler{h}, xhttp.WithMetricsPath(""))

	codes := make([]int, 0, 3)
	for i, xff := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"ticker":"AAPL"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXForwardedFor, xff)
		req.RemoteAddr = "192.0.2.7:5000"
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i > 0 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("spoofed X-Forwarded-For bypassed the limiter: %v", codes)
		}
	}
	if codes[0] != http.StatusOK {
		t.Fatalf("first request should pass, got %v", codes)
	}
}
