package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"UKPredict/internal/domain/models"
	xhttp "UKPredict/pkg/http"
	pkgkafka "UKPredict/pkg/kafka"
	xlogger "UKPredict/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamError is the frame sent back for a request that could not be served.
type streamError struct {
	Status int         `json:"status"`
	Error  interface{} `json:"error"`
}

// Stream answers every text frame {"prediction_datetime": ...} with one
// prediction frame, in order, until the client disconnects.
func (h *ElectricityHandler) Stream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(pkgkafka.WithTraceID(c.Request().Context(), xhttp.RequestID(c)))
	defer cancel()

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	frames := make(chan interface{}, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx, conn, frames)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", xlogger.Error(err))
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		select {
		case frames <- h.answer(ctx, msg):
		case <-done:
		}
	}

	cancel()
	close(frames)
	<-done
	return nil
}

func (h *ElectricityHandler) answer(ctx context.Context, msg []byte) interface{} {
	req := &models.ElectricityRequest{}
	if err := json.Unmarshal(msg, req); err != nil {
		return streamError{Status: http.StatusBadRequest, Error: "invalid JSON: " + err.Error()}
	}
	if verr := xhttp.ValidateStruct(ctx, req); verr != nil {
		return streamError{Status: http.StatusBadRequest, Error: verr}
	}
	res, err := h.predictor.Predict(ctx, req)
	if err != nil {
		appErr := toAppError(err)
		return streamError{Status: appErr.Status, Error: appErr.Message}
	}
	return res
}

func (h *ElectricityHandler) writeLoop(ctx context.Context, conn *websocket.Conn, frames <-chan interface{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(f); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					h.logger.Warn("websocket write error", xlogger.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
