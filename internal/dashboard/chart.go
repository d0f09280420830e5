package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the image encoding of a rendered chart.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"

	maxXTicks = 8
)

// ErrChartDestroyed is returned when rendering a released chart.
var ErrChartDestroyed = errors.New("chart has been destroyed")

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat maps "svg" to FormatSVG and anything else to FormatPNG.
func ParseFormat(s string) Format {
	if s == string(FormatSVG) {
		return FormatSVG
	}
	return FormatPNG
}

// ImageChart is a go-chart backed chart instance rendered on demand.
type ImageChart struct {
	mu        sync.Mutex
	graph     *chart.Chart
	destroyed bool
}

// Render encodes the chart to w.
func (c *ImageChart) Render(w io.Writer, format Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrChartDestroyed
	}

	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	if err := c.graph.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Destroy releases the chart; further renders fail.
func (c *ImageChart) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.graph = nil
	c.mu.Unlock()
}

// Destroyed reports whether Destroy has been called.
func (c *ImageChart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// ImageChartFactory builds ImageChart instances of a fixed size.
type ImageChartFactory struct {
	Width  int
	Height int
}

// NewChart lays out spec as an overlaid line chart. X positions are label
// indices so every series shares the label axis.
func (f ImageChartFactory) NewChart(spec ChartSpec) Chart {
	graph := &chart.Chart{
		Title:  spec.Title,
		Width:  f.Width,
		Height: f.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24},
		},
		XAxis: xAxis(spec),
		YAxis: chart.YAxis{
			Name:  spec.YTitle,
			Range: yRange(spec.Series),
		},
	}

	for _, s := range spec.Series {
		if len(s.Values) == 0 {
			continue
		}
		xs := make([]float64, len(s.Values))
		for i := range xs {
			xs[i] = float64(i)
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style:   seriesStyle(s),
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	return &ImageChart{graph: graph}
}

func seriesStyle(s SeriesSpec) chart.Style {
	col := drawing.Color{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 255}
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: s.StrokeWidth,
	}
	if s.ShowPoints {
		st.DotColor = col
		st.DotWidth = 2
	}
	return st
}

func xAxis(spec ChartSpec) chart.XAxis {
	n := len(spec.Labels)
	for _, s := range spec.Series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	maxX := float64(n - 1)
	if n <= 1 {
		maxX = 1
	}

	xa := chart.XAxis{
		Name:  spec.XTitle,
		Range: &chart.ContinuousRange{Min: 0, Max: maxX},
	}
	if len(spec.Labels) == 0 {
		return xa
	}

	step := int(math.Ceil(float64(len(spec.Labels)) / maxXTicks))
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(spec.Labels); i += step {
		xa.Ticks = append(xa.Ticks, chart.Tick{Value: float64(i), Label: spec.Labels[i]})
	}
	return xa
}

func yRange(series []SeriesSpec) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
