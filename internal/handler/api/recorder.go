package api

import (
	"context"
	"time"

	"UKPredict/internal/domain/repository"
	xhttp "UKPredict/pkg/http"

	"github.com/labstack/echo/v4"
)

const storeHealthTimeout = 2 * time.Second

// RecorderStatusHandler exposes liveness for the event recorder.
type RecorderStatusHandler struct {
	store repository.PredictionStore
}

var _ xhttp.Handler = (*RecorderStatusHandler)(nil)

func NewRecorderStatusHandler(store repository.PredictionStore) *RecorderStatusHandler {
	return &RecorderStatusHandler{store: store}
}

func (h *RecorderStatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *RecorderStatusHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeHealthTimeout)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		return xhttp.ServiceUnavailableResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "healthy", "store": "ok"})
}
