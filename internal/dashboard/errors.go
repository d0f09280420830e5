package dashboard

import (
	"errors"
	"fmt"
)

const (
	emptyTickerMessage   = "Please enter a ticker symbol."
	unknownServerMessage = "An unknown server error occurred."
	noDataMessage        = "The server returned no prediction data points. The red line cannot be drawn."
)

// ErrBusy is returned when a submission arrives while another is in flight.
var ErrBusy = errors.New("a prediction request is already in flight")

// ValidationError is a local input failure; no request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ServerError is a non-2xx reply from the prediction endpoint.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// NoDataError is a 2xx reply without prediction points.
type NoDataError struct{}

func (e *NoDataError) Error() string { return noDataMessage }

// TransportError wraps network and response decoding failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func newServerError(status int, message string) *ServerError {
	if message == "" {
		message = unknownServerMessage
	}
	return &ServerError{Status: status, Message: message}
}

// displayMessage renders err the way the error area shows it.
func displayMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

// outcome classifies err for metrics.
func outcome(err error) string {
	var (
		verr *ValidationError
		serr *ServerError
		nerr *NoDataError
		terr *TransportError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &serr):
		return "server_error"
	case errors.As(err, &nerr):
		return "no_data"
	case errors.As(err, &terr):
		return "transport_error"
	default:
		return "error"
	}
}
