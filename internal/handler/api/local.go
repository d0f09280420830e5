package api

import (
	"context"
	"net/http"

	"TrendLens/internal/dashboard"
	"TrendLens/internal/domain/models"
	xhttp "TrendLens/pkg/http"
)

// LocalPredictionAPI answers dashboard requests in-process with the status and
// body POST /predict would return. Requests are rate limited under key instead
// of the remote address.
type LocalPredictionAPI struct {
	h   *PredictHandler
	key string
}

var _ dashboard.PredictionAPI = (*LocalPredictionAPI)(nil)

// Local returns an in-process client whose requests share the limiter bucket key.
func (h *PredictHandler) Local(key string) *LocalPredictionAPI {
	return &LocalPredictionAPI{h: h, key: key}
}

func (a *LocalPredictionAPI) Predict(ctx context.Context, req models.PredictionRequest) (*dashboard.Reply, error) {
	if !a.h.limiter.Allow(a.key) {
		return errorReply(xhttp.TooManyRequestsError(msgRateLimited)), nil
	}

	hreq := &models.PredictHTTPRequest{Ticker: req.Ticker}
	if verrs := xhttp.ValidateStruct(hreq); verrs != nil {
		return errorReply(requestError(verrs)), nil
	}

	res, err := a.h.predict(ctx, hreq)
	if err != nil {
		return errorReply(err), nil
	}
	return &dashboard.Reply{Status: http.StatusOK, Body: *res}, nil
}

func errorReply(err error) *dashboard.Reply {
	status, message := xhttp.ErrorStatus(err)
	return &dashboard.Reply{Status: status, Body: models.PredictionResponse{Error: message}}
}
