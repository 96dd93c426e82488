package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorderRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordPrediction("housing", "ok")
	r.RecordPrediction("housing", "ok")
	r.RecordCache("housing", true)
	r.RecordHistoryMode("electricity", false)
	r.RecordLatency("inference", 0.01)
	r.RecordError("inference")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				got[mf.GetName()] += c.GetValue()
			}
		}
	}
	if got["ukpredict_predictions_total"] != 2 {
		t.Fatalf("predictions = %v", got["ukpredict_predictions_total"])
	}
	if got["ukpredict_prediction_cache_total"] != 1 || got["ukpredict_lookback_mode_total"] != 1 {
		t.Fatalf("counters = %v", got)
	}
}
