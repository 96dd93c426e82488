package native

import (
	"context"

	"UKPredict/internal/domain/models"
	"UKPredict/internal/domain/service"
)

const Backend = "native"

// Regressor adapts a Model to service.Regressor.
type Regressor struct {
	model *Model
	path  string
}

var _ service.Regressor = (*Regressor)(nil)

func NewRegressor(path string) (*Regressor, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Regressor{model: m, path: path}, nil
}

func (r *Regressor) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.model.Predict(row)
}

func (r *Regressor) Backend() string { return Backend }

func (r *Regressor) Path() string { return r.path }

func (r *Regressor) Model() *Model { return r.model }

func (r *Regressor) Close() error { return nil }
