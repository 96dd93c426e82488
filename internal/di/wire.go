//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"UKPredict/pkg/config"
	applogger "UKPredict/pkg/logger"
	"UKPredict/pkg/server"

	"github.com/google/wire"
)

var predictorSet = wire.NewSet(
	// Metrics
	ProvideRegistry,
	ProvideMetrics,

	// Infrastructure clients
	ProvideClickHouseClient,
	ProvideKafkaProducer,
	ProvideCacheService,

	// Repositories
	ProvideSeriesSource,
	ProvideEventPublisher,
	ProvidePredictionCache,

	// Model
	ProvideModelContext,

	ProvideHTTPServer,
	ProvideLogCollector,
	ProvideApp,
)

// InitializeHousingApp wires the housing price API.
func InitializeHousingApp(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		predictorSet,
		ProvideHousingPredictor,
		ProvideHousingHandler,
	)
	return nil, nil, nil
}

// InitializeElectricityApp wires the electricity demand API.
func InitializeElectricityApp(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		predictorSet,
		ProvideElectricityPredictor,
		ProvideElectricityHandler,
	)
	return nil, nil, nil
}

// InitializeRecorderApp wires the prediction event recorder.
func InitializeRecorderApp(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		ProvideRegistry,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvidePredictionStore,
		ProvideRecorderHandler,
		ProvideKafkaConsumer,
		ProvideRecorderHTTPHandler,
		ProvideHTTPServer,
		ProvideLogCollector,
		ProvideRecorderApp,
	)
	return nil, nil, nil
}
