package usecase

import (
	"context"
	"fmt"
	"time"

	"UKPredict/internal/domain/models"
	"UKPredict/internal/services/features"
	applogger "UKPredict/pkg/logger"
	"UKPredict/pkg/util"
)

const (
	electricityLowerRatio = 0.95
	electricityUpperRatio = 1.05
)

// DemandLevel buckets a national demand figure in MW.
func DemandLevel(mw float64) string {
	switch {
	case mw < 25000:
		return "Low"
	case mw < 35000:
		return "Medium"
	case mw < 42000:
		return "High"
	default:
		return "Very High"
	}
}

// ElectricityPredictor forecasts national demand for one timestamp.
type ElectricityPredictor struct {
	predictor
}

func NewElectricityPredictor(mc *ModelContext, deps PredictorDeps) *ElectricityPredictor {
	return &ElectricityPredictor{predictor: newPredictor(ServiceElectricity, mc, deps)}
}

func (e *ElectricityPredictor) Context() *ModelContext { return e.mc }

// Encode builds the feature vector for t against the loaded history.
func (e *ElectricityPredictor) Encode(t time.Time) features.Encoding {
	return features.Encode(t, features.LookbackFor(e.mc.Series))
}

func (e *ElectricityPredictor) Predict(ctx context.Context, req *models.ElectricityRequest) (*models.ElectricityPrediction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	t, err := util.ParseDateTime(req.PredictionDatetime)
	if err != nil {
		e.deps.Metrics.RecordPrediction(e.service, "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	enc := e.Encode(t)
	e.deps.Metrics.RecordHistoryMode(e.service, enc.HistoryUsed)
	row := enc.Vector.Row()

	key := cacheKey(e.service, row)
	var out models.ElectricityPrediction
	cached := e.lookup(ctx, key, &out)
	if !cached {
		demand, err := e.infer(ctx, row)
		if err != nil {
			return nil, err
		}
		out = models.ElectricityPrediction{
			PredictedDemandMW:  demand,
			LowerBound:         demand * electricityLowerRatio,
			UpperBound:         demand * electricityUpperRatio,
			PredictionDatetime: util.FormatISO(t),
			FeaturesUsed:       enc.Used(),
			DemandLevel:        DemandLevel(demand),
			HistoryUsed:        enc.HistoryUsed,
			Message:            predictionMessage,
		}
		e.remember(ctx, key, &out)
	}
	// Timestamps within one hour can share a feature row and a cache entry.
	out.PredictionDatetime = util.FormatISO(t)

	latency := time.Since(start)
	e.deps.Metrics.RecordPrediction(e.service, "ok")
	e.deps.Metrics.RecordLatency(e.service+"_predict", latency.Seconds())
	e.deps.Logger.Info("electricity prediction",
		applogger.String("at", out.PredictionDatetime),
		applogger.Float64("demand_mw", out.PredictedDemandMW),
		applogger.Bool("history_used", out.HistoryUsed),
		applogger.Bool("cached", cached),
	)

	e.publish(ctx, &models.PredictionEvent{
		RequestedAt: start.UTC(),
		Inputs: map[string]interface{}{
			"prediction_datetime": out.PredictionDatetime,
			"features":            enc.Vector.Named(),
		},
		Prediction:  out.PredictedDemandMW,
		LowerBound:  out.LowerBound,
		UpperBound:  out.UpperBound,
		LatencyMS:   latency.Milliseconds(),
		Cached:      cached,
		HistoryUsed: out.HistoryUsed,
	})
	return &out, nil
}
