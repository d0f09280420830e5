package dashboard

import (
	"context"
	"strings"

	"TrendLens/internal/domain/models"
	xhttp "TrendLens/pkg/http"
)

// Reply is a decoded prediction endpoint response with its status code.
type Reply struct {
	Status int
	Body   models.PredictionResponse
}

// OK reports a 2xx status.
func (r *Reply) OK() bool { return r.Status >= 200 && r.Status < 300 }

// PredictionAPI performs the prediction round trip.
type PredictionAPI interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*Reply, error)
}

// HTTPPredictionAPI posts prediction requests to a JSON endpoint.
type HTTPPredictionAPI struct {
	endpoint string
	client   *xhttp.Client
}

// NewHTTPPredictionAPI targets endpoint, e.g. http://localhost:8080/predict.
func NewHTTPPredictionAPI(endpoint string, client *xhttp.Client) *HTTPPredictionAPI {
	if client == nil {
		client = xhttp.NewClient(xhttp.WithTimeout(0))
	}
	return &HTTPPredictionAPI{endpoint: strings.TrimSpace(endpoint), client: client}
}

// Predict sends req and decodes the body whatever the status. Network and
// decoding failures come back as *TransportError.
func (a *HTTPPredictionAPI) Predict(ctx context.Context, req models.PredictionRequest) (*Reply, error) {
	reply := &Reply{}
	status, err := a.client.SendAndDecode(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     a.endpoint,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &reply.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	reply.Status = status
	return reply, nil
}
