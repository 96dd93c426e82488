package models

type RootStatus struct {
	Status               string `json:"status"`
	Message              string `json:"message"`
	ModelLoaded          bool   `json:"model_loaded"`
	HistoricalDataLoaded *bool  `json:"historical_data_loaded,omitempty"`
	HistoricalRecords    *int   `json:"historical_records,omitempty"`
}

type HealthStatus struct {
	Status       string `json:"status"`
	ModelStatus  string `json:"model_status"`
	DataStatus   string `json:"data_status,omitempty"`
	Version      string `json:"version"`
	Features     int    `json:"features,omitempty"`
	ModelBackend string `json:"model_backend,omitempty"`
}

type HistoricalRange struct {
	MinDate      string `json:"min_date,omitempty"`
	MaxDate      string `json:"max_date,omitempty"`
	TotalRecords int    `json:"total_records,omitempty"`
	Source       string `json:"source,omitempty"`
}

// ModelInfo is static metadata about the served model. Housing and
// electricity fill different subsets.
type ModelInfo struct {
	ModelType         string              `json:"model_type"`
	Features          []string            `json:"features,omitempty"`
	FeaturesCount     int                 `json:"features_count,omitempty"`
	FeatureCategories map[string][]string `json:"feature_categories,omitempty"`
	TrainingData      string              `json:"training_data"`
	R2Score           string              `json:"r2_score,omitempty"`
	Performance       map[string]float64  `json:"performance,omitempty"`
	Artifact          string              `json:"artifact,omitempty"`
	Backend           string              `json:"backend,omitempty"`
	HistoricalData    *HistoricalRange    `json:"historical_data,omitempty"`
}
