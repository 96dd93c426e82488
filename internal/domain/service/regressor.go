package service

import (
	"context"

	"UKPredict/internal/domain/models"
)

// Regressor is a loaded, read-only model that scores one feature row.
type Regressor interface {
	Predict(ctx context.Context, row models.FeatureRow) (float64, error)
	// Backend names the implementation ("native", "sidecar", ...).
	Backend() string
	Close() error
}
