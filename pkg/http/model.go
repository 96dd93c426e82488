package http

// APIResponse is the envelope used for every error response.
type APIResponse struct {
	Status  int         `json:"status" example:"400"`
	Message string      `json:"message" example:"Bad Request"`
	Data    interface{} `json:"data,omitempty"`
}

// APIResponse400Err represents 400 error response.
type APIResponse400Err struct {
	Status  int               `json:"status" example:"400"`
	Message string            `json:"message" example:"Bad Request"`
	Data    []ValidationError `json:"data,omitempty"`
}

// APIResponseDetail carries a single human-readable detail string, e.g.
// "Model not loaded" or "Prediction failed: <cause>".
type APIResponseDetail struct {
	Status  int    `json:"status" example:"503"`
	Message string `json:"message" example:"Service Unavailable"`
	Data    string `json:"data,omitempty" example:"Model not loaded"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"year"`
	Message string                 `json:"message,omitempty" example:"year is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
