package usecase

import (
	"UKPredict/internal/domain/models"
	"UKPredict/internal/services/features"
)

const (
	statusLoaded    = "loaded"
	statusNotLoaded = "not loaded"
)

func loadedString(ok bool) string {
	if ok {
		return statusLoaded
	}
	return statusNotLoaded
}

func health(mc *ModelContext, version string) models.HealthStatus {
	st := models.HealthStatus{
		Status:       "healthy",
		ModelStatus:  loadedString(mc.Ready()),
		Version:      version,
		ModelBackend: mc.Backend(),
	}
	if !mc.Ready() {
		st.Status = "unhealthy"
	}
	return st
}

func (h *HousingPredictor) Root() models.RootStatus {
	return models.RootStatus{
		Status:      "online",
		Message:     "UK Housing Price Prediction API",
		ModelLoaded: h.mc.Ready(),
	}
}

func (h *HousingPredictor) Health(version string) models.HealthStatus {
	return health(h.mc, version)
}

func (h *HousingPredictor) ModelInfo() (*models.ModelInfo, error) {
	if !h.mc.Ready() {
		return nil, ErrModelNotLoaded
	}
	cols := make([]string, len(features.HousingColumns))
	copy(cols, features.HousingColumns)
	return &models.ModelInfo{
		ModelType:    "LightGBM",
		Features:     cols,
		TrainingData: "5.9M transactions (1995-2017)",
		R2Score:      "~67%",
		Artifact:     h.mc.Artifact,
		Backend:      h.mc.Backend(),
	}, nil
}

func (e *ElectricityPredictor) Root() models.RootStatus {
	loaded := e.mc.HistoryLoaded()
	records := e.mc.Series.Len()
	return models.RootStatus{
		Status:               "online",
		Message:              "UK Electricity Demand Prediction API",
		ModelLoaded:          e.mc.Ready(),
		HistoricalDataLoaded: &loaded,
		HistoricalRecords:    &records,
	}
}

func (e *ElectricityPredictor) Health(version string) models.HealthStatus {
	st := health(e.mc, version)
	st.DataStatus = loadedString(e.mc.HistoryLoaded())
	st.Features = features.FeatureCount
	return st
}

func (e *ElectricityPredictor) ModelInfo() (*models.ModelInfo, error) {
	if !e.mc.Ready() {
		return nil, ErrModelNotLoaded
	}
	cats := make(map[string][]string, len(features.FeatureCategories))
	for k, v := range features.FeatureCategories {
		cats[k] = append([]string(nil), v...)
	}
	hist := e.mc.HistoricalRange()
	if hist == nil {
		hist = &models.HistoricalRange{}
	}
	return &models.ModelInfo{
		ModelType:         "Gradient Boosting Regressor",
		FeaturesCount:     features.FeatureCount,
		FeatureCategories: cats,
		TrainingData:      "UK electricity demand 2001-2025",
		Performance: map[string]float64{
			"r2_score": 0.70,
			"mae_mw":   2353.23,
			"rmse_mw":  3107.24,
		},
		Artifact:       e.mc.Artifact,
		Backend:        e.mc.Backend(),
		HistoricalData: hist,
	}, nil
}
