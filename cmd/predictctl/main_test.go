package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthUsesEnvURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","model_status":"loaded","version":"1.0.0"}`))
	}))
	defer srv.Close()
	t.Setenv("PREDICT_HOUSING_URL", srv.URL+"/")

	out, err := run(t, "health", "housing")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, `"status": "healthy"`) {
		t.Fatalf("output not pretty printed: %s", out)
	}
}

func TestPredictHousingSendsFlags(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"predicted_price":250000,"lower_bound":225000,"upper_bound":275000}`))
	}))
	defer srv.Close()

	_, err := run(t, "predict", "housing", "--housing-url", srv.URL,
		"--property-type", "Flat", "--tenure", "Leasehold", "--new-build",
		"--county", "Greater London", "--district", "Camden", "--town", "London",
		"--year", "2020", "--month", "6")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got["property_type_label"] != "Flat" || got["tenure_label"] != "Leasehold" {
		t.Fatalf("labels = %v", got)
	}
	if got["is_new_build"] != true || got["year"] != float64(2020) || got["month"] != float64(6) {
		t.Fatalf("body = %v", got)
	}
}

func TestPredictElectricityReportsDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":503,"message":"Service Unavailable","data":"Model not loaded"}`))
	}))
	defer srv.Close()

	_, err := run(t, "predict", "electricity", "2025-03-15T14:00:00", "--electricity-url", srv.URL)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "503 Model not loaded") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownService(t *testing.T) {
	if _, err := run(t, "model-info", "weather"); err == nil {
		t.Fatalf("expected error for unknown service")
	}
}

func TestPredictHousingRequiresLocation(t *testing.T) {
	if _, err := run(t, "predict", "housing", "--housing-url", "http://127.0.0.1:1"); err == nil {
		t.Fatalf("expected missing flag error")
	}
}
