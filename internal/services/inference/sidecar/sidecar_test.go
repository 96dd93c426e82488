package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"text/template"
	"time"

	"UKPredict/internal/domain/models"
)

func TestPredictSendsFrame(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte("OK\n"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte("412345.5"))
	}))
	defer srv.Close()

	s := &Sidecar{Url: srv.URL, Cli: srv.Client()}
	if !s.checker(context.Background()) {
		t.Fatalf("checker should see OK")
	}

	row := models.FeatureRow{models.Cat("county", "GREATER LONDON"), models.Num("year", 2017)}
	y, err := s.Predict(context.Background(), row)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if y != 412345.5 {
		t.Fatalf("prediction = %v", y)
	}
	if strings.Join(got.Columns, ",") != "county,year" {
		t.Fatalf("columns = %v", got.Columns)
	}
	if len(got.Categorical) != 1 || got.Categorical[0] != "county" {
		t.Fatalf("categorical = %v", got.Categorical)
	}
	if got.Values[0] != "GREATER LONDON" || got.Values[1] != 2017.0 {
		t.Fatalf("values = %v", got.Values)
	}
}

func TestPredictSurfacesChildError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("could not convert string to float"))
	}))
	defer srv.Close()

	s := &Sidecar{Url: srv.URL, Cli: srv.Client()}
	_, err := s.Predict(context.Background(), models.FeatureRow{models.Num("x", 1)})
	if !errors.Is(err, ErrPrediction) {
		t.Fatalf("err = %v", err)
	}
}

func TestRestoreFailsWhenChildExits(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	s := &Sidecar{
		Pat: "/nonexistent/model.pkl",
		Por: 1,
		Pyt: "/bin/sh",
		Tem: "exit 3\n",
		Pol: 10 * time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Restore(ctx)
	if !errors.Is(err, ErrStartupTimeout) {
		t.Fatalf("err = %v", err)
	}
	if s.Fil != nil {
		t.Fatalf("script not removed")
	}
	if err := s.Sigkill(); err != nil {
		t.Fatalf("second sigkill: %v", err)
	}
}

func TestRestoreValidates(t *testing.T) {
	if err := (&Sidecar{Por: 9000}).Restore(context.Background()); err == nil {
		t.Fatalf("expected missing path error")
	}
	if err := (&Sidecar{Pat: "m.pkl"}).Restore(context.Background()); err == nil {
		t.Fatalf("expected missing port error")
	}
}

func TestScriptQuotesPaths(t *testing.T) {
	s := &Sidecar{Add: "127.0.0.1", Pat: `C:\models\"housing".pkl`, Por: 8765}

	var buf strings.Builder
	if err := template.Must(template.New("script").Parse(deftem)).Execute(&buf, s.data()); err != nil {
		t.Fatalf("render: %v", err)
	}
	script := buf.String()
	if !strings.Contains(script, `MODEL = load_model("C:\\models\\\"housing\".pkl")`) {
		t.Fatalf("model path not escaped:\n%s", script)
	}
	if !strings.Contains(script, `addr="127.0.0.1", port=8765`) {
		t.Fatalf("address not rendered:\n%s", script)
	}
}
