package usecase

import (
	"context"
	"encoding/json"
	"time"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	pkgkafka "WaveFuse/pkg/kafka"
)

// KafkaTicksHandler writes consumed tick messages into storage.
type KafkaTicksHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// Handle decodes one tick ({symbol, t, c, v}, t in seconds or millis) and
// stores it, recording end-to-end and insert latency along the way.
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 {
		m.T /= 1000 // millis to seconds
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Tick{
		Symbol:    m.Symbol,
		Timestamp: m.T,
		Price:     m.C,
		Volume:    m.V,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)

	// lag from the bar bucket the tick lands in; materialized view
	// completion is not checked here
	bucket := time.Unix(m.T, 0).UTC().Truncate(time.Second)
	h.metrics.RecordLatency("bar_lag_seconds", time.Since(bucket).Seconds())
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
