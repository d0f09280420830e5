package models

// PredictHTTPRequest is the bound body of POST /predict. Only ticker is part
// of the dashboard contract; the rest are optional knobs.
type PredictHTTPRequest struct {
	Ticker     string  `json:"ticker" validate:"required,max=16"`
	Start      string  `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string  `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Interval   string  `json:"interval" default:"1d" validate:"oneof=1d 1wk 1mo"`
	TrainRatio float64 `json:"train_ratio" validate:"omitempty,gt=0,lt=1"`
}

// RunsRequest is the query of GET /runs.
type RunsRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=1,lte=200"`
}
