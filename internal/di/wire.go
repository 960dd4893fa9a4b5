//go:build wireinject
// +build wireinject

package di

import (
	"WaveFuse/pkg/config"
	"WaveFuse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp builds the full object graph.
// The generated implementation lives in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// external clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// storage and transport adapters
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvideFinnhubStream,

		// Use cases
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
