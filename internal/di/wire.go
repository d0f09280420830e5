//go:build wireinject
// +build wireinject

package di

import (
	"TrendLens/pkg/config"
	"TrendLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvidePriceSource,
		ProvideRunRecorder,
		ProvideRunLister,

		// Use cases
		ProvidePredictorUseCase,
		ProvideRateLimiter,

		// Handlers
		ProvidePredictHandler,
		ProvideDashboardHandler,

		// Housekeeping
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
