//go:build wireinject
// +build wireinject

package di

import (
	"InsiderPulse/internal/usecase"
	"InsiderPulse/pkg/config"
	"InsiderPulse/pkg/server"

	"github.com/google/wire"
)

var storeSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideRepository,
)

var analyticsSet = wire.NewSet(
	ProvideQueryStore,
	ProvideAnalyticsConfig,
	ProvideLimits,
	usecase.NewSentimentUseCase,
	usecase.NewTickerUseCase,
	ProvideDashboardUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		storeSet,
		analyticsSet,

		// HTTP
		ProvideResponseCache,
		ProvideLimiter,
		ProvideHTTPHandler,

		// Ingest
		ProvideKafkaProducer,
		ProvideIngestPipeline,
		ProvideKafkaConsumer,
		ProvideTransactionsHandler,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalytics builds the read side only.
func InitializeAnalytics(cfg *config.Config) (*Analytics, func(), error) {
	wire.Build(
		storeSet,
		analyticsSet,
		ProvideAnalytics,
	)
	return nil, nil, nil
}

// InitializeProcessor builds the import path used by the publish command.
func InitializeProcessor(cfg *config.Config) (*usecase.TransactionProcessor, func(), error) {
	wire.Build(
		storeSet,
		ProvideKafkaProducer,
		ProvideTransactionPublisher,
		ProvideTransactionProcessor,
	)
	return nil, nil, nil
}
