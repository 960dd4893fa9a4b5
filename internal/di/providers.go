package di

import (
	"context"
	"fmt"
	"time"

	"WaveFuse/internal/domain/repository"
	mid "WaveFuse/internal/middleware"
	internalrepo "WaveFuse/internal/repository"
	"WaveFuse/internal/service/finnhub"
	"WaveFuse/internal/usecase"
	pkgch "WaveFuse/pkg/clickhouse"
	"WaveFuse/pkg/config"
	pkgkafka "WaveFuse/pkg/kafka"
	"WaveFuse/pkg/metrics"
	"WaveFuse/pkg/server"

	"github.com/segmentio/kafka-go"
)

// ProvideClickHouseClient opens ClickHouse and applies the ingest schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS wavefuse",
		"CREATE TABLE IF NOT EXISTS wavefuse.rt_ticks_raw (ts DateTime64(3), symbol LowCardinality(String), price Float64, volume Float64, source LowCardinality(String), event_id String, seq UInt64, org_id String) ENGINE=ReplacingMergeTree(seq) ORDER BY (symbol, ts, event_id)",
		"CREATE TABLE IF NOT EXISTS wavefuse.rt_bars_1s (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=AggregatingMergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS wavefuse.rt_bars_1m (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=AggregatingMergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS wavefuse.rt_bars_1d (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=AggregatingMergeTree ORDER BY (symbol, bucket)",
		"CREATE MATERIALIZED VIEW IF NOT EXISTS wavefuse.mv_bars_1s TO wavefuse.rt_bars_1s AS SELECT toStartOfSecond(ts) AS bucket, symbol, argMin(price, ts) AS open, max(price) AS high, min(price) AS low, argMax(price, ts) AS close, sum(volume) AS vol FROM wavefuse.rt_ticks_raw GROUP BY bucket, symbol",
		"CREATE MATERIALIZED VIEW IF NOT EXISTS wavefuse.mv_bars_1m TO wavefuse.rt_bars_1m AS SELECT toStartOfMinute(ts) AS bucket, symbol, argMin(price, ts) AS open, max(price) AS high, min(price) AS low, argMax(price, ts) AS close, sum(volume) AS vol FROM wavefuse.rt_ticks_raw GROUP BY bucket, symbol",
		"CREATE MATERIALIZED VIEW IF NOT EXISTS wavefuse.mv_bars_1d TO wavefuse.rt_bars_1d AS SELECT toStartOfDay(ts) AS bucket, symbol, argMin(price, ts) AS open, max(price) AS high, min(price) AS low, argMax(price, ts) AS close, sum(volume) AS vol FROM wavefuse.rt_ticks_raw GROUP BY bucket, symbol",
		"CREATE TABLE IF NOT EXISTS wavefuse.app_logs (level LowCardinality(String), message String, caller String, count UInt32, first_seen DateTime, last_seen DateTime, fields String) ENGINE=MergeTree ORDER BY (first_seen, level) TTL first_seen + INTERVAL 30 DAY",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer builds the tick publisher's producer from YAML.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics builds the shared Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTickStorage builds raw-tick storage over the shared client.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".rt_ticks_raw")
}

// ProvideTickPublisher builds the Kafka-backed tick publisher.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer builds the bar-ingest consumer from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler builds the handler that lands ticks in ClickHouse.
func ProvideKafkaTicksHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideFinnhubStream builds the Finnhub WebSocket market stream.
func ProvideFinnhubStream(cfg *config.Config) repository.MarketStream {
	return finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
	)
}

// ProvideTickProcessor builds the batching tick processor.
func ProvideTickProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTickCollector wires the stream into the throttled ingest pipeline.
func ProvideTickCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	metrics repository.Metrics,
) *usecase.TickCollector {
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, processor, metrics, pipe)
}

// metricsHook records per-message handle latency and failures.
type metricsHook struct {
	pkgkafka.NoopHook
	m repository.Metrics
}

type hookStartKey struct{}

func (h metricsHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return context.WithValue(ctx, hookStartKey{}, time.Now()), km, data, nil
}

func (h metricsHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if start, ok := ctx.Value(hookStartKey{}).(time.Time); ok {
		h.m.RecordLatency("kafka_handle", time.Since(start).Seconds())
	}
	if err != nil {
		h.m.RecordError("kafka_handle")
	}
}

// ProvideApp assembles the application and attaches the consumer hook.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	m repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(metricsHook{m: m})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
