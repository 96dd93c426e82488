package usecase

import (
	"context"
	"fmt"
	"time"

	"UKPredict/internal/domain/models"
	"UKPredict/internal/services/features"
	applogger "UKPredict/pkg/logger"
)

const (
	housingLowerRatio = 0.9
	housingUpperRatio = 1.1

	predictionMessage = "Prediction successful"
)

// HousingPredictor prices a single property sale.
type HousingPredictor struct {
	predictor
}

func NewHousingPredictor(mc *ModelContext, deps PredictorDeps) *HousingPredictor {
	return &HousingPredictor{predictor: newPredictor(ServiceHousing, mc, deps)}
}

func (h *HousingPredictor) Context() *ModelContext { return h.mc }

func (h *HousingPredictor) Predict(ctx context.Context, req *models.HousingRequest) (*models.HousingPrediction, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	row, err := features.NormalizeHousing(req)
	if err != nil {
		h.deps.Metrics.RecordPrediction(h.service, "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	key := cacheKey(h.service, row)
	var out models.HousingPrediction
	cached := h.lookup(ctx, key, &out)
	if !cached {
		price, err := h.infer(ctx, row)
		if err != nil {
			return nil, err
		}
		out = models.HousingPrediction{
			PredictedPrice: price,
			LowerBound:     price * housingLowerRatio,
			UpperBound:     price * housingUpperRatio,
			Message:        predictionMessage,
		}
		h.remember(ctx, key, &out)
	}

	latency := time.Since(start)
	h.deps.Metrics.RecordPrediction(h.service, "ok")
	h.deps.Metrics.RecordLatency(h.service+"_predict", latency.Seconds())
	h.deps.Logger.Info("housing prediction",
		applogger.Float64("price", out.PredictedPrice),
		applogger.String("town_city", cellString(row, "town_city")),
		applogger.Bool("cached", cached),
	)

	h.publish(ctx, &models.PredictionEvent{
		RequestedAt: start.UTC(),
		Inputs:      row.Map(),
		Prediction:  out.PredictedPrice,
		LowerBound:  out.LowerBound,
		UpperBound:  out.UpperBound,
		LatencyMS:   latency.Milliseconds(),
		Cached:      cached,
	})
	return &out, nil
}

func cellString(row models.FeatureRow, name string) string {
	c, ok := row.Lookup(name)
	if !ok {
		return ""
	}
	if c.Kind == models.Categorical {
		return c.Cat
	}
	return fmt.Sprint(c.Num)
}
