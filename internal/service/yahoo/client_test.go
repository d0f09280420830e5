package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrendLens/internal/domain/models"
	xhttp "TrendLens/pkg/http"
)

const chartBody = `{"chart":{"result":[{
  "meta":{"gmtoffset":-18000},
  "timestamp":[1704378600,1704205800,1704292200,1704465000],
  "indicators":{
    "quote":[{"close":[181.91,185.64,184.25,null]}],
    "adjclose":[{"adjclose":[181.0,184.7,183.3,null]}]
  }}],"error":null}}`

func query() models.BarQuery {
	return models.BarQuery{
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		Interval: "1d",
	}
}

func TestBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "1d" || q.Get("period1") != "1704067200" || q.Get("period2") != "1704499200" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithHTTPClient(xhttp.NewClient()))
	bars, err := c.Bars(context.Background(), "AAPL", query())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars (null skipped), got %d", len(bars))
	}

	want := []struct {
		date  string
		close float64
	}{
		{"2024-01-02", 184.7},
		{"2024-01-03", 183.3},
		{"2024-01-04", 181.0},
	}
	for i, w := range want {
		if got := bars[i].Date.Format("2006-01-02"); got != w.date || bars[i].Close != w.close {
			t.Fatalf("bar %d: got %s %.2f, want %s %.2f", i, got, bars[i].Close, w.date, w.close)
		}
	}
}

func TestBarsUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Bars(context.Background(), "ZZZZ", query())
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBarsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Bars(context.Background(), "AAPL", query())
	if err == nil || errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewHTTPClientRejectsBadProxy(t *testing.T) {
	if _, err := NewHTTPClient(time.Second, "://bad"); err == nil {
		t.Fatalf("expected proxy parse error")
	}
}
