package dashboard

import (
	"fmt"
	"io"
	"sync"
)

const (
	DefaultSubmitLabel = "Get Prediction"
	BusySubmitLabel    = "Processing..."
)

// Container is the element that hosts the chart.
type Container interface {
	SetChartVisible(visible bool)
}

// View is the set of page elements the request flow reads and mutates.
type View interface {
	Container
	TickerValue() string
	SetTickerValue(v string)
	SetSubmitEnabled(enabled bool)
	SetSubmitLabel(label string)
	SetResultTitle(title string)
	SetErrorMessage(message string)
}

// PageState is a copy of every element's current state.
type PageState struct {
	Ticker        string
	SubmitEnabled bool
	SubmitLabel   string
	ResultTitle   string
	ErrorMessage  string
	ChartVisible  bool
}

// Page is an in-memory View backing the web dashboard.
type Page struct {
	mu    sync.RWMutex
	state PageState
}

// NewPage returns a page in its initial, interactive state.
func NewPage() *Page {
	return &Page{state: PageState{
		SubmitEnabled: true,
		SubmitLabel:   DefaultSubmitLabel,
	}}
}

// SetTickerValue fills the ticker input.
func (p *Page) SetTickerValue(v string) {
	p.mu.Lock()
	p.state.Ticker = v
	p.mu.Unlock()
}

func (p *Page) TickerValue() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Ticker
}

func (p *Page) SetSubmitEnabled(enabled bool) {
	p.mu.Lock()
	p.state.SubmitEnabled = enabled
	p.mu.Unlock()
}

func (p *Page) SetSubmitLabel(label string) {
	p.mu.Lock()
	p.state.SubmitLabel = label
	p.mu.Unlock()
}

func (p *Page) SetResultTitle(title string) {
	p.mu.Lock()
	p.state.ResultTitle = title
	p.mu.Unlock()
}

func (p *Page) SetErrorMessage(message string) {
	p.mu.Lock()
	p.state.ErrorMessage = message
	p.mu.Unlock()
}

func (p *Page) SetChartVisible(visible bool) {
	p.mu.Lock()
	p.state.ChartVisible = visible
	p.mu.Unlock()
}

// Snapshot returns the current element states.
func (p *Page) Snapshot() PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ConsoleView prints title and error changes to a writer; used by the CLI.
type ConsoleView struct {
	ticker  string
	out     io.Writer
	visible bool
}

// NewConsoleView creates a console view whose input holds ticker.
func NewConsoleView(ticker string, out io.Writer) *ConsoleView {
	return &ConsoleView{ticker: ticker, out: out}
}

func (v *ConsoleView) TickerValue() string { return v.ticker }

func (v *ConsoleView) SetTickerValue(ticker string) { v.ticker = ticker }

func (v *ConsoleView) SetSubmitEnabled(bool) {}

func (v *ConsoleView) SetSubmitLabel(label string) {
	if label == BusySubmitLabel {
		fmt.Fprintln(v.out, label)
	}
}

func (v *ConsoleView) SetResultTitle(title string) {
	if title != "" {
		fmt.Fprintln(v.out, title)
	}
}

func (v *ConsoleView) SetErrorMessage(message string) {
	if message != "" {
		fmt.Fprintln(v.out, message)
	}
}

func (v *ConsoleView) SetChartVisible(visible bool) { v.visible = visible }

// ChartVisible reports whether the chart was last shown.
func (v *ConsoleView) ChartVisible() bool { return v.visible }
