package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	"UKPredict/pkg/cache"
	pkgkafka "UKPredict/pkg/kafka"
	applogger "UKPredict/pkg/logger"
	"UKPredict/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrModelNotLoaded   = errors.New("model not loaded")
	ErrInvalidTimestamp = errors.New("invalid datetime format")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInference        = errors.New("prediction failed")
)

const (
	ServiceHousing     = "housing"
	ServiceElectricity = "electricity"

	defaultEventTimeout = 2 * time.Second
)

// PredictorDeps are the optional collaborators shared by both predictors.
// Nil Cache or Events disables that concern.
type PredictorDeps struct {
	Cache        domrepo.PredictionCache
	Events       domrepo.EventPublisher
	Metrics      domrepo.Metrics
	Logger       *applogger.Logger
	EventTimeout time.Duration
}

type predictor struct {
	service string
	mc      *ModelContext
	deps    PredictorDeps
}

func newPredictor(service string, mc *ModelContext, deps PredictorDeps) predictor {
	if deps.Logger == nil {
		deps.Logger = applogger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.EventTimeout <= 0 {
		deps.EventTimeout = defaultEventTimeout
	}
	return predictor{service: service, mc: mc, deps: deps}
}

func cacheKey(service string, row models.FeatureRow) string {
	return cache.GenerateKey("predict", service, cache.HashKey(row.Canonical()))
}

// lookup reads a cached response into dest. Cache errors count as misses.
func (p *predictor) lookup(ctx context.Context, key string, dest interface{}) bool {
	if p.deps.Cache == nil {
		return false
	}
	hit, err := p.deps.Cache.Get(ctx, key, dest)
	if err != nil {
		p.deps.Metrics.RecordError("cache_get")
		p.deps.Logger.Warn("prediction cache read failed", applogger.String("key", key), applogger.Error(err))
		return false
	}
	p.deps.Metrics.RecordCache(p.service, hit)
	return hit
}

func (p *predictor) remember(ctx context.Context, key string, value interface{}) {
	if p.deps.Cache == nil {
		return
	}
	if err := p.deps.Cache.Set(ctx, key, value); err != nil {
		p.deps.Metrics.RecordError("cache_set")
		p.deps.Logger.Warn("prediction cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// infer calls the regressor and records latency and failures.
func (p *predictor) infer(ctx context.Context, row models.FeatureRow) (float64, error) {
	start := time.Now()
	v, err := p.mc.Regressor.Predict(ctx, row)
	p.deps.Metrics.RecordLatency(p.service+"_inference", time.Since(start).Seconds())
	if err != nil {
		p.deps.Metrics.RecordPrediction(p.service, "error")
		p.deps.Logger.Error("inference failed",
			applogger.String("service", p.service),
			applogger.String("backend", p.mc.Backend()),
			applogger.Error(err),
		)
		return 0, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return v, nil
}

// publish emits the audit event. Failures are logged and never reach the
// caller. The request context's cancellation is not inherited.
func (p *predictor) publish(ctx context.Context, e *models.PredictionEvent) {
	if p.deps.Events == nil {
		return
	}
	e.ID = uuid.NewString()
	e.Service = p.service
	e.TraceID = pkgkafka.TraceIDFrom(ctx)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.deps.EventTimeout)
	defer cancel()
	if err := p.deps.Events.Publish(pctx, e); err != nil {
		p.deps.Metrics.RecordError("event_publish")
		p.deps.Logger.Warn("prediction event not published",
			applogger.String("service", p.service),
			applogger.String("event_id", e.ID),
			applogger.Error(err),
		)
	}
}

func (p *predictor) ready() error {
	if !p.mc.Ready() {
		p.deps.Metrics.RecordPrediction(p.service, "unavailable")
		return ErrModelNotLoaded
	}
	return nil
}
