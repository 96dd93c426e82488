package api

import (
	"net/http"

	"UKPredict/internal/domain/models"
	"UKPredict/internal/usecase"
	xhttp "UKPredict/pkg/http"
	pkgkafka "UKPredict/pkg/kafka"
	xlogger "UKPredict/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HousingHandler serves the housing price API.
type HousingHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.HousingPredictor
	opts      handlerOptions
}

var _ xhttp.Handler = (*HousingHandler)(nil)

func NewHousingHandler(logger *xlogger.Logger, predictor *usecase.HousingPredictor, opts ...HandlerOption) *HousingHandler {
	return &HousingHandler{logger: logger, predictor: predictor, opts: buildOptions(opts)}
}

func (h *HousingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/model-info", h.ModelInfo)
	e.POST("/predict", h.Predict, h.opts.predictMiddleware()...)
}

func (h *HousingHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.Root())
}

func (h *HousingHandler) Health(c echo.Context) error {
	st := h.predictor.Health(h.opts.version)
	if !h.predictor.Context().Ready() {
		return c.JSON(http.StatusServiceUnavailable, st)
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *HousingHandler) ModelInfo(c echo.Context) error {
	info, err := h.predictor.ModelInfo()
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *HousingHandler) Predict(c echo.Context) error {
	req := &models.HousingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := pkgkafka.WithTraceID(c.Request().Context(), xhttp.RequestID(c))
	res, err := h.predictor.Predict(ctx, req)
	if err != nil {
		h.logger.Error("housing predict error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
