package repository

import (
	"context"
	"errors"

	"UKPredict/internal/domain/models"
)

// ErrNoHistory means no historical dataset is configured or present. It is
// not fatal: the electricity encoder falls back to the demand profile.
var ErrNoHistory = errors.New("historical data not available")

// SeriesSource loads the historical demand series once at startup.
type SeriesSource interface {
	Load(ctx context.Context) (*models.Series, error)
	Describe() string
}

// EventPublisher ships prediction audit events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, e *models.PredictionEvent) error
	Close() error
}

// PredictionStore persists audit events for later analysis.
type PredictionStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, e *models.PredictionEvent) error
	StoreBatch(ctx context.Context, events []*models.PredictionEvent) error
	Health(ctx context.Context) error
}

// PredictionCache memoizes responses for identical feature rows.
type PredictionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type Metrics interface {
	RecordPrediction(service, result string)
	RecordLatency(op string, seconds float64)
	RecordCache(service string, hit bool)
	RecordHistoryMode(service string, history bool)
	RecordError(kind string)
}
