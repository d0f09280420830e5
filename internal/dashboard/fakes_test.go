package dashboard

import (
	"context"
	"sync"

	"TrendLens/internal/domain/models"
)

type fakeChart struct {
	spec      ChartSpec
	destroyed bool
	owner     *fakeFactory
}

func (c *fakeChart) Destroy() {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if !c.destroyed {
		c.destroyed = true
		c.owner.live--
	}
}

type fakeFactory struct {
	mu      sync.Mutex
	created []*fakeChart
	live    int
}

func (f *fakeFactory) NewChart(spec ChartSpec) Chart {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &fakeChart{spec: spec, owner: f}
	f.created = append(f.created, c)
	f.live++
	return c
}

func (f *fakeFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []models.PredictionRequest
	reply    *Reply
	err      error
	onCall   func()
}

func (a *fakeAPI) Predict(_ context.Context, req models.PredictionRequest) (*Reply, error) {
	a.mu.Lock()
	a.requests = append(a.requests, req)
	onCall := a.onCall
	a.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.reply, nil
}

func (a *fakeAPI) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

func okReply(dates []string, actual, predicted []float64) *Reply {
	return &Reply{Status: 200, Body: models.PredictionResponse{
		Dates:     dates,
		Actual:    actual,
		Predicted: predicted,
	}}
}
