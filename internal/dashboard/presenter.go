package dashboard

import "sync"

// ChartTitle is the title of every prediction chart.
const ChartTitle = "Model Performance on Test Data"

const (
	xAxisTitle      = "Date"
	yAxisTitle      = "Closing Price (USD)"
	actualLabel     = "Actual Price (Test Data)"
	predictedLabel  = "Predicted Trend Line"
	lineTension     = 0.1
	actualStroke    = 1.5
	predictedStroke = 4
)

var (
	actualColor    = RGB{R: 54, G: 162, B: 235}
	predictedColor = RGB{R: 255, G: 99, B: 71}
)

// RGB is an opaque line color.
type RGB struct {
	R, G, B uint8
}

// SeriesSpec describes one line of the chart.
type SeriesSpec struct {
	Name        string
	Values      []float64
	Color       RGB
	StrokeWidth float64
	ShowPoints  bool
	Tension     float64
}

// ChartSpec is everything a chart instance needs to draw itself.
type ChartSpec struct {
	Title  string
	XTitle string
	YTitle string
	Labels []string
	Series []SeriesSpec
}

// Chart is a live chart instance. Destroy releases it; a destroyed chart
// must not be drawn again.
type Chart interface {
	Destroy()
}

// ChartFactory builds chart instances.
type ChartFactory interface {
	NewChart(spec ChartSpec) Chart
}

// Presenter owns the single chart slot bound to a container.
type Presenter struct {
	mu         sync.Mutex
	container  Container
	factory    ChartFactory
	instance   Chart
	generation int
}

// NewPresenter binds a presenter to its container.
func NewPresenter(container Container, factory ChartFactory) *Presenter {
	return &Presenter{container: container, factory: factory}
}

// Draw replaces the current chart with actual vs predicted over labels and
// reveals the container.
func (p *Presenter) Draw(labels []string, actual, predicted []float64) {
	spec := ChartSpec{
		Title:  ChartTitle,
		XTitle: xAxisTitle,
		YTitle: yAxisTitle,
		Labels: labels,
		Series: []SeriesSpec{
			{
				Name:        actualLabel,
				Values:      actual,
				Color:       actualColor,
				StrokeWidth: actualStroke,
				ShowPoints:  true,
				Tension:     lineTension,
			},
			{
				Name:        predictedLabel,
				Values:      predicted,
				Color:       predictedColor,
				StrokeWidth: predictedStroke,
				ShowPoints:  false,
				Tension:     lineTension,
			},
		},
	}

	p.mu.Lock()
	if p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
	p.instance = p.factory.NewChart(spec)
	p.generation++
	p.mu.Unlock()

	p.Show()
}

// Show makes the chart container visible.
func (p *Presenter) Show() { p.container.SetChartVisible(true) }

// Hide hides the chart container. The chart instance is kept.
func (p *Presenter) Hide() { p.container.SetChartVisible(false) }

// Current returns the live chart and its draw generation; nil before the first draw.
func (p *Presenter) Current() (Chart, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instance, p.generation
}

// Close destroys the live chart, if any.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
}
