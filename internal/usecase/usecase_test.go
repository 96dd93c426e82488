package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"UKPredict/internal/domain/models"
	pkgkafka "UKPredict/pkg/kafka"
)

type fakeRegressor struct {
	mu    sync.Mutex
	value float64
	err   error
	calls int
	rows  []models.FeatureRow
}

func (f *fakeRegressor) Predict(_ context.Context, row models.FeatureRow) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.rows = append(f.rows, row)
	return f.value, f.err
}

func (f *fakeRegressor) Backend() string { return "fake" }
func (f *fakeRegressor) Close() error    { return nil }

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

type captureEvents struct {
	mu     sync.Mutex
	events []*models.PredictionEvent
	err    error
}

func (c *captureEvents) Publish(_ context.Context, e *models.PredictionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

func (c *captureEvents) Close() error { return nil }

type memStore struct {
	stored []*models.PredictionEvent
	err    error
}

func (s *memStore) Init(context.Context) error { return nil }
func (s *memStore) Store(_ context.Context, e *models.PredictionEvent) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, e)
	return nil
}
func (s *memStore) StoreBatch(ctx context.Context, events []*models.PredictionEvent) error {
	for _, e := range events {
		if err := s.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
func (s *memStore) Health(context.Context) error { return nil }

func housingRequest() *models.HousingRequest {
	return &models.HousingRequest{
		PropertyTypeLabel: "D",
		TenureLabel:       "Freehold",
		County:            " greater london ",
		District:          "Camden",
		TownCity:          "London",
		Year:              2020,
		Month:             6,
	}
}

func TestHousingPredictBounds(t *testing.T) {
	reg := &fakeRegressor{value: 500000}
	ev := &captureEvents{}
	p := NewHousingPredictor(&ModelContext{Regressor: reg, Artifact: "m.json"}, PredictorDeps{Events: ev})

	got, err := p.Predict(context.Background(), housingRequest())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.PredictedPrice != 500000 || got.LowerBound != 450000 || got.UpperBound != 550000 {
		t.Fatalf("unexpected prediction %+v", got)
	}
	if got.Message != "Prediction successful" {
		t.Fatalf("message = %q", got.Message)
	}

	row := reg.rows[0]
	if c, _ := row.Lookup("property_type_label"); c.Cat != "Detached" {
		t.Fatalf("property type = %q", c.Cat)
	}
	if c, _ := row.Lookup("county"); c.Cat != "GREATER LONDON" {
		t.Fatalf("county = %q", c.Cat)
	}
	if c, _ := row.Lookup("quarter"); c.Num != 2 {
		t.Fatalf("quarter = %v", c.Num)
	}

	if len(ev.events) != 1 {
		t.Fatalf("events = %d", len(ev.events))
	}
	e := ev.events[0]
	if e.ID == "" || e.Service != ServiceHousing || e.Prediction != 500000 || e.Cached {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestHousingPredictRejectsBadInput(t *testing.T) {
	reg := &fakeRegressor{value: 1}
	p := NewHousingPredictor(&ModelContext{Regressor: reg}, PredictorDeps{})

	req := housingRequest()
	req.TenureLabel = "Commonhold"
	if _, err := p.Predict(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if reg.calls != 0 {
		t.Fatalf("regressor called on invalid input")
	}
}

func TestPredictModelNotLoaded(t *testing.T) {
	h := NewHousingPredictor(&ModelContext{}, PredictorDeps{})
	if _, err := h.Predict(context.Background(), housingRequest()); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("housing: %v", err)
	}
	e := NewElectricityPredictor(&ModelContext{}, PredictorDeps{})
	if _, err := e.Predict(context.Background(), &models.ElectricityRequest{PredictionDatetime: "2024-06-15T14:00:00"}); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("electricity: %v", err)
	}
	if _, err := e.ModelInfo(); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("model info: %v", err)
	}
	if st := e.Health("1.0.0"); st.Status != "unhealthy" || st.ModelStatus != "not loaded" {
		t.Fatalf("health = %+v", st)
	}
}

func TestPredictInferenceFailure(t *testing.T) {
	reg := &fakeRegressor{err: errors.New("boom")}
	ev := &captureEvents{}
	p := NewHousingPredictor(&ModelContext{Regressor: reg}, PredictorDeps{Events: ev})

	_, err := p.Predict(context.Background(), housingRequest())
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if len(ev.events) != 0 {
		t.Fatalf("failed prediction must not publish")
	}
}

func TestElectricityPredictSaturday(t *testing.T) {
	reg := &fakeRegressor{value: 30000}
	p := NewElectricityPredictor(&ModelContext{Regressor: reg}, PredictorDeps{})

	got, err := p.Predict(context.Background(), &models.ElectricityRequest{PredictionDatetime: "2024-06-15T14:00:00"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.LowerBound != 30000*0.95 || got.UpperBound != 30000*1.05 {
		t.Fatalf("bounds %v %v", got.LowerBound, got.UpperBound)
	}
	if !got.FeaturesUsed.IsWeekend || got.FeaturesUsed.Season != 2 || got.FeaturesUsed.Hour != 14 {
		t.Fatalf("features_used = %+v", got.FeaturesUsed)
	}
	if got.HistoryUsed {
		t.Fatalf("history_used without a series")
	}
	if got.DemandLevel != "Medium" {
		t.Fatalf("level = %q", got.DemandLevel)
	}
	if got.PredictionDatetime != "2024-06-15T14:00:00" {
		t.Fatalf("datetime = %q", got.PredictionDatetime)
	}
	if n := len(reg.rows[0]); n != 33 {
		t.Fatalf("row has %d columns", n)
	}
}

func TestElectricityPredictUsesHistory(t *testing.T) {
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	series := models.NewSeries([]models.DemandPoint{
		{At: at.Add(-2 * time.Hour), DemandMW: 30000},
		{At: at.Add(-time.Hour), DemandMW: 32000},
	})
	reg := &fakeRegressor{value: 45000}
	p := NewElectricityPredictor(&ModelContext{Regressor: reg, Series: series}, PredictorDeps{})

	got, err := p.Predict(context.Background(), &models.ElectricityRequest{PredictionDatetime: "2024-01-10 12:00"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !got.HistoryUsed || got.FeaturesUsed.RollingMean24h != 31000 {
		t.Fatalf("unexpected %+v", got)
	}
	if got.DemandLevel != "Very High" {
		t.Fatalf("level = %q", got.DemandLevel)
	}
}

func TestElectricityPredictBadTimestamp(t *testing.T) {
	reg := &fakeRegressor{value: 1}
	p := NewElectricityPredictor(&ModelContext{Regressor: reg}, PredictorDeps{})
	_, err := p.Predict(context.Background(), &models.ElectricityRequest{PredictionDatetime: "not-a-date"})
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestPredictionCacheServesRepeats(t *testing.T) {
	reg := &fakeRegressor{value: 33000}
	ev := &captureEvents{}
	p := NewElectricityPredictor(&ModelContext{Regressor: reg}, PredictorDeps{Cache: newMapCache(), Events: ev})

	req := &models.ElectricityRequest{PredictionDatetime: "2024-03-01T08:00:00"}
	first, err := p.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := p.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if reg.calls != 1 {
		t.Fatalf("regressor calls = %d", reg.calls)
	}
	if *first != *second {
		t.Fatalf("cached response differs: %+v vs %+v", first, second)
	}
	if len(ev.events) != 2 || ev.events[0].Cached || !ev.events[1].Cached {
		t.Fatalf("cached flags wrong: %+v", ev.events)
	}
}

func TestCachedPredictionKeepsRequestedDatetime(t *testing.T) {
	reg := &fakeRegressor{value: 33000}
	ev := &captureEvents{}
	p := NewElectricityPredictor(&ModelContext{Regressor: reg}, PredictorDeps{Cache: newMapCache(), Events: ev})

	tests := []string{"2024-06-15T14:00:00", "2024-06-15T14:45:00", "2024-06-15T14:45:30.250000"}
	for _, at := range tests {
		got, err := p.Predict(context.Background(), &models.ElectricityRequest{PredictionDatetime: at})
		if err != nil {
			t.Fatalf("%s: %v", at, err)
		}
		if got.PredictionDatetime != at {
			t.Fatalf("requested %s, got prediction_datetime %s", at, got.PredictionDatetime)
		}
	}
	if reg.calls != 1 {
		t.Fatalf("same-hour requests should share one inference, calls = %d", reg.calls)
	}
	for i, e := range ev.events {
		if e.Inputs["prediction_datetime"] != tests[i] {
			t.Fatalf("event %d prediction_datetime = %v", i, e.Inputs["prediction_datetime"])
		}
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	reg := &fakeRegressor{value: 200000}
	ev := &captureEvents{err: errors.New("broker down")}
	p := NewHousingPredictor(&ModelContext{Regressor: reg}, PredictorDeps{Events: ev})

	ctx := pkgkafka.WithTraceID(context.Background(), "req-1")
	if _, err := p.Predict(ctx, housingRequest()); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if ev.events[0].TraceID != "req-1" {
		t.Fatalf("trace id = %q", ev.events[0].TraceID)
	}
}

func TestDemandLevel(t *testing.T) {
	tests := []struct {
		mw   float64
		want string
	}{
		{0, "Low"},
		{24999.9, "Low"},
		{25000, "Medium"},
		{34999, "Medium"},
		{35000, "High"},
		{41999, "High"},
		{42000, "Very High"},
		{math.MaxFloat64, "Very High"},
	}
	for _, tt := range tests {
		if got := DemandLevel(tt.mw); got != tt.want {
			t.Fatalf("DemandLevel(%v) = %q, want %q", tt.mw, got, tt.want)
		}
	}
}

func TestStatusAndModelInfo(t *testing.T) {
	series := models.NewSeries([]models.DemandPoint{
		{At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DemandMW: 30000},
		{At: time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC), DemandMW: 31000},
	})
	mc := &ModelContext{Regressor: &fakeRegressor{}, Series: series, SeriesSource: "file:demand.csv"}
	e := NewElectricityPredictor(mc, PredictorDeps{})

	root := e.Root()
	if root.Status != "online" || !root.ModelLoaded || !*root.HistoricalDataLoaded || *root.HistoricalRecords != 2 {
		t.Fatalf("root = %+v", root)
	}
	st := e.Health("1.0.0")
	if st.Status != "healthy" || st.DataStatus != "loaded" || st.Features != 33 || st.ModelBackend != "fake" {
		t.Fatalf("health = %+v", st)
	}
	info, err := e.ModelInfo()
	if err != nil {
		t.Fatalf("model info: %v", err)
	}
	if info.FeaturesCount != 33 || info.HistoricalData.TotalRecords != 2 {
		t.Fatalf("info = %+v", info)
	}
	if info.HistoricalData.MinDate != "2024-01-01T00:00:00" || info.HistoricalData.MaxDate != "2024-01-02T00:30:00" {
		t.Fatalf("range = %+v", info.HistoricalData)
	}

	h := NewHousingPredictor(&ModelContext{Regressor: &fakeRegressor{}}, PredictorDeps{})
	if r := h.Root(); r.HistoricalDataLoaded != nil || r.Message != "UK Housing Price Prediction API" {
		t.Fatalf("housing root = %+v", r)
	}
	hi, err := h.ModelInfo()
	if err != nil || len(hi.Features) != 9 || hi.ModelType != "LightGBM" {
		t.Fatalf("housing info = %+v, %v", hi, err)
	}
}

func TestRecorderHandler(t *testing.T) {
	store := &memStore{}
	h := NewRecorderHandler("prediction-events", store, nil)
	if h.Topic() != "prediction-events" {
		t.Fatalf("topic = %q", h.Topic())
	}

	b, _ := json.Marshal(&models.PredictionEvent{ID: "e1", Service: ServiceHousing, Prediction: 1})
	ctx := pkgkafka.WithTraceID(context.Background(), "req-9")
	if err := h.Handle(ctx, b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].TraceID != "req-9" {
		t.Fatalf("stored = %+v", store.stored)
	}

	if err := h.Handle(ctx, []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := h.Handle(ctx, []byte(`{"id":""}`)); err == nil {
		t.Fatalf("expected validation error")
	}

	store.err = errors.New("clickhouse down")
	if err := h.Handle(ctx, b); err == nil {
		t.Fatalf("expected store error")
	}
}
