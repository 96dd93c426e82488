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

// ElectricityHandler serves the electricity demand API.
type ElectricityHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.ElectricityPredictor
	opts      handlerOptions
}

var _ xhttp.Handler = (*ElectricityHandler)(nil)

func NewElectricityHandler(logger *xlogger.Logger, predictor *usecase.ElectricityPredictor, opts ...HandlerOption) *ElectricityHandler {
	return &ElectricityHandler{logger: logger, predictor: predictor, opts: buildOptions(opts)}
}

func (h *ElectricityHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/model-info", h.ModelInfo)
	e.POST("/predict", h.Predict, h.opts.predictMiddleware()...)
	e.GET("/ws/predict", h.Stream)
}

func (h *ElectricityHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.Root())
}

func (h *ElectricityHandler) Health(c echo.Context) error {
	st := h.predictor.Health(h.opts.version)
	if !h.predictor.Context().Ready() {
		return c.JSON(http.StatusServiceUnavailable, st)
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *ElectricityHandler) ModelInfo(c echo.Context) error {
	info, err := h.predictor.ModelInfo()
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *ElectricityHandler) Predict(c echo.Context) error {
	req := &models.ElectricityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := pkgkafka.WithTraceID(c.Request().Context(), xhttp.RequestID(c))
	res, err := h.predictor.Predict(ctx, req)
	if err != nil {
		h.logger.Error("electricity predict error",
			xlogger.String("prediction_datetime", req.PredictionDatetime),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
