package api

import (
	"errors"
	"strings"

	"UKPredict/internal/usecase"
	xhttp "UKPredict/pkg/http"
	xmw "UKPredict/pkg/http/middleware"

	"github.com/labstack/echo/v4"
)

// toAppError maps usecase failures onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrModelNotLoaded):
		return xhttp.ServiceUnavailableError("Model not loaded")
	case errors.Is(err, usecase.ErrInvalidTimestamp):
		return xhttp.BadRequestErrorf("Invalid datetime format: %s", cause(err, usecase.ErrInvalidTimestamp))
	case errors.Is(err, usecase.ErrInvalidRequest):
		return xhttp.BadRequestError(cause(err, usecase.ErrInvalidRequest))
	case errors.Is(err, usecase.ErrInference):
		return xhttp.InternalErrorf("Prediction failed: %s", cause(err, usecase.ErrInference))
	default:
		return xhttp.InternalErrorf("Prediction failed: %v", err)
	}
}

// cause strips the sentinel prefix added by the usecase layer.
func cause(err, sentinel error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, sentinel.Error()+": ")
}

type handlerOptions struct {
	limiter *xmw.Limiter
	version string
}

type HandlerOption func(*handlerOptions)

// WithRateLimit guards POST /predict with a per-client token bucket.
func WithRateLimit(l *xmw.Limiter) HandlerOption {
	return func(o *handlerOptions) { o.limiter = l }
}

func WithVersion(v string) HandlerOption {
	return func(o *handlerOptions) {
		if v != "" {
			o.version = v
		}
	}
}

func buildOptions(opts []HandlerOption) handlerOptions {
	o := handlerOptions{version: "1.0.0"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o handlerOptions) predictMiddleware() []echo.MiddlewareFunc {
	if o.limiter == nil {
		return nil
	}
	return []echo.MiddlewareFunc{xmw.RateLimit(o.limiter, xhttp.ClientKey)}
}
