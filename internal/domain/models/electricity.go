package models

type ElectricityRequest struct {
	PredictionDatetime string `json:"prediction_datetime" validate:"required"`
}

// FeaturesUsed echoes the encoder inputs a caller usually wants to see.
type FeaturesUsed struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	Hour           int     `json:"hour"`
	IsWeekend      bool    `json:"is_weekend"`
	Season         int     `json:"season"`
	DemandLag1d    float64 `json:"demand_lag_1d"`
	RollingMean24h float64 `json:"rolling_mean_24h"`
}

type ElectricityPrediction struct {
	PredictedDemandMW  float64      `json:"predicted_demand_mw"`
	LowerBound         float64      `json:"lower_bound"`
	UpperBound         float64      `json:"upper_bound"`
	PredictionDatetime string       `json:"prediction_datetime"`
	FeaturesUsed       FeaturesUsed `json:"features_used"`
	DemandLevel        string       `json:"demand_level"`
	HistoryUsed        bool         `json:"history_used"`
	Message            string       `json:"message"`
}
