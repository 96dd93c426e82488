package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	pkgkafka "UKPredict/pkg/kafka"
	pkgmetrics "UKPredict/pkg/metrics"
)

// RecorderHandler consumes prediction events and writes them to the store.
type RecorderHandler struct {
	topic   string
	store   domrepo.PredictionStore
	metrics domrepo.Metrics
}

var _ pkgkafka.MessageHandler = (*RecorderHandler)(nil)

func NewRecorderHandler(topic string, store domrepo.PredictionStore, metrics domrepo.Metrics) *RecorderHandler {
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	return &RecorderHandler{topic: topic, store: store, metrics: metrics}
}

func (h *RecorderHandler) Topic() string { return h.topic }

func (h *RecorderHandler) Handle(ctx context.Context, b []byte) error {
	var e models.PredictionEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("recorder_unmarshal")
		return fmt.Errorf("decode prediction event: %w", err)
	}
	if e.ID == "" || e.Service == "" {
		h.metrics.RecordError("recorder_invalid")
		return fmt.Errorf("prediction event missing id or service")
	}
	if e.TraceID == "" {
		e.TraceID = pkgkafka.TraceIDFrom(ctx)
	}
	if !e.RequestedAt.IsZero() {
		h.metrics.RecordLatency("recorder_e2e", time.Since(e.RequestedAt).Seconds())
	}

	start := time.Now()
	err := h.store.Store(ctx, &e)
	h.metrics.RecordLatency("recorder_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("recorder_store")
		return err
	}
	return nil
}
