package dashboard

import "context"

// Dashboard is one page with its chart slot and request flow.
type Dashboard struct {
	Page      *Page
	Presenter *Presenter
	Flow      *Flow
}

// New assembles a dashboard backed by an in-memory page.
func New(api PredictionAPI, charts ChartFactory, opts ...FlowOption) *Dashboard {
	page := NewPage()
	presenter := NewPresenter(page, charts)
	return &Dashboard{
		Page:      page,
		Presenter: presenter,
		Flow:      NewFlow(page, presenter, api, opts...),
	}
}

// Submit fills the ticker input and runs the flow; see Flow.SubmitTicker.
func (d *Dashboard) Submit(ctx context.Context, ticker string) error {
	return d.Flow.SubmitTicker(ctx, ticker)
}

// Close releases the live chart.
func (d *Dashboard) Close() { d.Presenter.Close() }
