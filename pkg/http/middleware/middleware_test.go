package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLimiterRefills(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("capacity not honoured")
	}
	if l.Allow("a") {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected refill")
	}
	if l.Allow("a") {
		t.Fatalf("refill exceeded rate")
	}
}

func TestLimiterDropsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2, 1)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if l.Len() != 100 {
		t.Fatalf("tracked = %d", l.Len())
	}

	now = now.Add(defaultIdleTTL)
	l.Allow("10.0.1.1")
	if l.Len() != 1 {
		t.Fatalf("idle buckets kept, tracked = %d", l.Len())
	}
}

func TestLimiterKeepsDrainedBuckets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(1, 0)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(defaultIdleTTL)
	if l.Allow("a") {
		t.Fatalf("sweep must not reset a drained bucket")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	lim := NewLimiter(1, 0)
	h := RateLimit(lim, func(c echo.Context) string { return c.RealIP() })(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/predict", nil), rec)
		if err := h(c); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if rec.Code != want {
			t.Fatalf("call %d: code = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	for code, want := range map[int]string{101: "1xx", 200: "2xx", 304: "3xx", 429: "4xx", 503: "5xx"} {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %s", code, got)
		}
	}
}
