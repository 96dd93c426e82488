package models

// HousingRequest describes one property sale to price. Property type and
// tenure accept either the full label or the Land Registry single-letter code.
type HousingRequest struct {
	PropertyTypeLabel string `json:"property_type_label" validate:"required,oneof=Detached Semi-Detached Terraced Flat Other D S T F O"`
	IsNewBuild        bool   `json:"is_new_build"`
	TenureLabel       string `json:"tenure_label" validate:"required,oneof=Freehold Leasehold F L"`
	County            string `json:"county" validate:"required"`
	District          string `json:"district" validate:"required"`
	TownCity          string `json:"town_city" validate:"required"`
	Year              int    `json:"year" validate:"gte=1995,lte=2025"`
	Month             int    `json:"month" validate:"gte=1,lte=12"`
	// Quarter is accepted for compatibility and ignored; it is always
	// derived from Month.
	Quarter *int `json:"quarter,omitempty"`
}

type HousingPrediction struct {
	PredictedPrice float64 `json:"predicted_price"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	Message        string  `json:"message"`
}
