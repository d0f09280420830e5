package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"TrendLens/internal/dashboard"
	"TrendLens/internal/domain/models"
	"TrendLens/internal/handler/api"
	"TrendLens/internal/service/ratelimit"
	"TrendLens/internal/usecase"
	xlogger "TrendLens/pkg/logger"
)

type stubAPI struct {
	reply *dashboard.Reply
}

func (a *stubAPI) Predict(_ context.Context, req models.PredictionRequest) (*dashboard.Reply, error) {
	return a.reply, nil
}

func newTestServer(api dashboard.PredictionAPI) (*echo.Echo, *DashboardHandler) {
	h := NewDashboardHandler(xlogger.Nop(), time.Hour, func(string) *dashboard.Dashboard {
		return dashboard.New(api, dashboard.ImageChartFactory{Width: 480, Height: 240})
	})
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func do(e *echo.Echo, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func submit(e *echo.Echo, cookie *http.Cookie, ticker string) *httptest.ResponseRecorder {
	form := url.Values{"ticker": {ticker}}
	req := httptest.NewRequest(http.MethodPost, "/ui/predict", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return do(e, req, cookie)
}

func TestDashboardSuccessFlow(t *testing.T) {
	api := &stubAPI{reply: &dashboard.Reply{Status: 200, Body: models.PredictionResponse{
		Dates:     []string{"2024-01-02", "2024-01-03", "2024-01-04"},
		Actual:    []float64{185.6, 184.2, 181.9},
		Predicted: []float64{186.1, 186.3, 186.5},
	}}}
	e, h := newTestServer(api)
	defer h.Close()

	rec := do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Get Prediction") || !strings.Contains(body, "display: none;") {
		t.Fatalf("unexpected initial page:\n%s", body)
	}
	cookie := sessionFrom(t, rec)

	rec = submit(e, cookie, "aapl")
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/ui" {
		t.Fatalf("expected redirect to /ui, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	body = do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), cookie).Body.String()
	if !strings.Contains(body, "Showing prediction results for AAPL") {
		t.Fatalf("missing result title:\n%s", body)
	}
	if !strings.Contains(body, "display: block;") || !strings.Contains(body, "/ui/chart.png?v=1") {
		t.Fatalf("chart not visible:\n%s", body)
	}
	if !strings.Contains(body, `alt="`+dashboard.ChartTitle+`"`) {
		t.Fatalf("chart title missing:\n%s", body)
	}

	rec = do(e, httptest.NewRequest(http.MethodGet, "/ui/chart.png", nil), cookie)
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Fatalf("expected png, got %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("body is not a png")
	}

	rec = do(e, httptest.NewRequest(http.MethodGet, "/ui/chart.png?format=svg", nil), cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("expected svg, got %d", rec.Code)
	}
}

func TestDashboardErrorsAndMissingChart(t *testing.T) {
	api := &stubAPI{reply: &dashboard.Reply{Status: 404, Body: models.PredictionResponse{
		Error: "No data found for ticker 'ZZZZ'. Please check the symbol.",
	}}}
	e, h := newTestServer(api)
	defer h.Close()

	rec := do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), nil)
	cookie := sessionFrom(t, rec)

	submit(e, cookie, "   ")
	body := do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), cookie).Body.String()
	if !strings.Contains(body, "Please enter a ticker symbol.") {
		t.Fatalf("validation message missing:\n%s", body)
	}

	submit(e, cookie, "zzzz")
	body = do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), cookie).Body.String()
	if !strings.Contains(body, "Error: No data found for ticker &#39;ZZZZ&#39;. Please check the symbol.") {
		t.Fatalf("server error missing:\n%s", body)
	}
	if !strings.Contains(body, "display: none;") {
		t.Fatalf("chart should be hidden after failure")
	}

	if rec := do(e, httptest.NewRequest(http.MethodGet, "/ui/chart.png", nil), cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a chart, got %d", rec.Code)
	}
	if rec := do(e, httptest.NewRequest(http.MethodGet, "/ui/chart.png", nil), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a session, got %d", rec.Code)
	}
}

func TestRootRedirects(t *testing.T) {
	e, h := newTestServer(&stubAPI{})
	defer h.Close()

	rec := do(e, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/ui" {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	clock := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	created := 0
	s := newSessionStore(time.Minute, func(string) *dashboard.Dashboard {
		created++
		return dashboard.New(&stubAPI{}, dashboard.ImageChartFactory{Width: 100, Height: 100})
	})
	s.now = func() time.Time { return clock }

	id, first, isNew := s.get("")
	if !isNew || id == "" {
		t.Fatalf("expected a new session")
	}
	if again, d, isNew := s.get(id); isNew || again != id || d != first {
		t.Fatalf("expected the same session back")
	}

	clock = clock.Add(2 * time.Minute)
	if _, ok := s.lookup(id); ok {
		t.Fatalf("session should have expired")
	}
	newID, _, isNew := s.get(id)
	if !isNew || newID == id {
		t.Fatalf("expired session must be replaced")
	}
	if s.len() != 1 || created != 2 {
		t.Fatalf("expected expired session swept, have %d sessions, %d created", s.len(), created)
	}
}

func TestSessionStoreExpireDropsIdle(t *testing.T) {
	clock := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := newSessionStore(time.Minute, func(string) *dashboard.Dashboard {
		return dashboard.New(&stubAPI{}, dashboard.ImageChartFactory{Width: 100, Height: 100})
	})
	s.now = func() time.Time { return clock }

	s.get("")
	s.get("")
	if n := s.expire(); n != 0 {
		t.Fatalf("nothing should expire yet, dropped %d", n)
	}

	clock = clock.Add(2 * time.Minute)
	if n := s.expire(); n != 2 || s.len() != 0 {
		t.Fatalf("expected both sessions dropped, dropped %d, left %d", n, s.len())
	}
}

type barSource struct{}

func (barSource) Bars(context.Context, string, models.BarQuery) ([]models.Bar, error) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Bar, 30)
	for i := range out {
		out[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: 150 + float64(i)}
	}
	return out, nil
}

func TestSessionsHaveSeparateRateLimits(t *testing.T) {
	uc := usecase.NewPredictorUseCase(barSource{}, nil, nil, nil, usecase.PredictorConfig{
		Start:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		TrainRatio: 0.8,
		MinPoints:  20,
	})
	predict := api.NewPredictHandler(xlogger.Nop(), uc, ratelimit.New(5, 0.001), nil)

	h := NewDashboardHandler(xlogger.Nop(), time.Hour, func(id string) *dashboard.Dashboard {
		return dashboard.New(predict.Local("session:"+id), dashboard.ImageChartFactory{Width: 320, Height: 200})
	})
	defer h.Close()
	e := echo.New()
	h.RegisterRoutes(e)

	for i := 0; i < 8; i++ {
		cookie := sessionFrom(t, do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), nil))
		submit(e, cookie, "aapl")
		body := do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), cookie).Body.String()
		if !strings.Contains(body, "Showing prediction results for AAPL") {
			t.Fatalf("session %d was throttled:\n%s", i+1, body)
		}
	}

	cookie := sessionFrom(t, do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), nil))
	for i := 0; i < 6; i++ {
		submit(e, cookie, "aapl")
	}
	body := do(e, httptest.NewRequest(http.MethodGet, "/ui", nil), cookie).Body.String()
	if !strings.Contains(body, "Error: Too many requests. Please slow down.") {
		t.Fatalf("a single session should still be limited:\n%s", body)
	}
}
