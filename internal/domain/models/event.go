package models

import "time"

// PredictionEvent is the audit record emitted for every served prediction.
type PredictionEvent struct {
	ID          string                 `json:"id"`
	Service     string                 `json:"service"`
	RequestedAt time.Time              `json:"requested_at"`
	Inputs      map[string]interface{} `json:"inputs"`
	Prediction  float64                `json:"prediction"`
	LowerBound  float64                `json:"lower_bound"`
	UpperBound  float64                `json:"upper_bound"`
	LatencyMS   int64                  `json:"latency_ms"`
	Cached      bool                   `json:"cached"`
	HistoryUsed bool                   `json:"history_used"`
	TraceID     string                 `json:"trace_id,omitempty"`
}
