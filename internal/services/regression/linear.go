package regression

import (
	"errors"
	"math"
)

// ErrNoObservations is returned when fitting an empty sample.
var ErrNoObservations = errors.New("regression: no observations")

// ErrLengthMismatch is returned when x and y differ in length.
var ErrLengthMismatch = errors.New("regression: x and y lengths differ")

// Linear is a fitted y = Slope*x + Intercept model.
type Linear struct {
	Slope     float64
	Intercept float64
}

// Fit estimates an ordinary least squares line through (x, y).
// A sample without variance in x yields a flat line at mean(y).
func Fit(x, y []float64) (Linear, error) {
	if len(x) != len(y) {
		return Linear{}, ErrLengthMismatch
	}
	n := float64(len(x))
	if n == 0 {
		return Linear{}, ErrNoObservations
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	// centered sums keep precision with large day ordinals
	var sxy, sxx float64
	for i := range x {
		dx := x[i] - meanX
		sxy += dx * (y[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Linear{Slope: 0, Intercept: meanY}, nil
	}

	slope := sxy / sxx
	return Linear{Slope: slope, Intercept: meanY - slope*meanX}, nil
}

// Predict evaluates the line at x.
func (m Linear) Predict(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// PredictAll evaluates the line at every x.
func (m Linear) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// RMSE is the root mean squared error between actual and predicted.
func RMSE(actual, predicted []float64) float64 {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}
