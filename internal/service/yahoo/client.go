package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"TrendLens/internal/domain/models"
	drepo "TrendLens/internal/domain/repository"
	xhttp "TrendLens/pkg/http"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client reads closing prices from the Yahoo Finance chart API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

var _ drepo.PriceSource = (*Client)(nil)

// New creates a Yahoo price source.
func New(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithUserAgent("Mozilla/5.0"))
	}
	return c
}

// NewHTTPClient builds a client for Yahoo, optionally through proxyURL.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*xhttp.Client, error) {
	opts := []xhttp.ClientOption{
		xhttp.WithTimeout(timeout),
		xhttp.WithUserAgent("Mozilla/5.0"),
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		opts = append(opts, xhttp.WithTransport(&http.Transport{Proxy: http.ProxyURL(u)}))
	}
	return xhttp.NewClient(opts...), nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		GMTOffset int64 `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Bars returns split and dividend adjusted closes in [q.Start, q.End),
// oldest first. Unknown symbols yield models.ErrNoData.
func (c *Client) Bars(ctx context.Context, ticker string, q models.BarQuery) ([]models.Bar, error) {
	interval := drepo.NormalizeInterval(q.Interval)

	var resp chartResponse
	status, err := c.http.SendAndDecode(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"interval": {interval},
			"period1":  {strconv.FormatInt(q.Start.Unix(), 10)},
			"period2":  {strconv.FormatInt(q.End.Unix(), 10)},
			"events":   {"div,splits"},
		},
	}, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, models.ErrNoData
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	if e := resp.Chart.Error; e != nil {
		if status == http.StatusNotFound || strings.EqualFold(e.Code, "Not Found") {
			return nil, models.ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("yahoo chart %s: status %d", ticker, status)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}
	return toBars(resp.Chart.Result[0]), nil
}

func toBars(r chartResult) []models.Bar {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	bars := make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars
		}
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		bars = append(bars, models.Bar{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}
