package native

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"UKPredict/internal/domain/models"
)

// Two trees over (property_type_label, year). Tree 0 splits on the category,
// tree 1 on the year.
const housingDump = `{
  "name": "tree",
  "objective": "regression",
  "feature_names": ["property_type_label", "year"],
  "pandas_categorical": [["Detached", "Flat", "Terraced"]],
  "tree_info": [
    {"tree_index": 0, "tree_structure": {
      "split_feature": 0, "threshold": "0||2", "decision_type": "==",
      "default_left": false, "missing_type": "NaN",
      "left_child": {"leaf_value": 300000},
      "right_child": {"leaf_value": 150000}
    }},
    {"tree_index": 1, "tree_structure": {
      "split_feature": 1, "threshold": 2010.5, "decision_type": "<=",
      "default_left": true, "missing_type": "NaN",
      "left_child": {"leaf_value": -20000},
      "right_child": {"leaf_value": 40000}
    }}
  ]
}`

func row(ptype string, year float64) models.FeatureRow {
	return models.FeatureRow{
		models.Num("year", year),
		models.Cat("property_type_label", ptype),
	}
}

func TestPredictCategoricalAndNumeric(t *testing.T) {
	m, err := Parse([]byte(housingDump))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tests := []struct {
		ptype string
		year  float64
		want  float64
	}{
		{"Detached", 2017, 340000},
		{"Terraced", 2000, 280000},
		{"Flat", 2017, 190000},
		{"Bungalow", 2017, 190000},
	}
	for _, tt := range tests {
		got, err := m.Predict(row(tt.ptype, tt.year))
		if err != nil {
			t.Fatalf("%s: %v", tt.ptype, err)
		}
		if got != tt.want {
			t.Fatalf("%s/%v: got %v want %v", tt.ptype, tt.year, got, tt.want)
		}
	}
}

func TestMissingValueFollowsDefault(t *testing.T) {
	m, err := Parse([]byte(housingDump))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := m.Predict(row("Detached", math.NaN()))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != 280000 {
		t.Fatalf("got %v", got)
	}
}

func TestSchemaErrors(t *testing.T) {
	m, err := Parse([]byte(housingDump))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := m.Predict(models.FeatureRow{models.Num("year", 2017)}); !errors.Is(err, ErrSchema) {
		t.Fatalf("missing column: %v", err)
	}
	wrong := models.FeatureRow{models.Num("year", 2017), models.Num("property_type_label", 1)}
	if _, err := m.Predict(wrong); !errors.Is(err, ErrSchema) {
		t.Fatalf("numeric where categorical expected: %v", err)
	}
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":    `{`,
		"no features": `{"tree_info": [{"tree_structure": {"leaf_value": 1}}]}`,
		"no trees":    `{"feature_names": ["a"]}`,
		"bad split":   `{"feature_names": ["a"], "tree_info": [{"tree_structure": {"split_feature": 3, "threshold": 1, "decision_type": "<=", "left_child": {"leaf_value": 1}, "right_child": {"leaf_value": 2}}}]}`,
		"bad type":    `{"feature_names": ["a"], "tree_info": [{"tree_structure": {"split_feature": 0, "threshold": 1, "decision_type": ">", "left_child": {"leaf_value": 1}, "right_child": {"leaf_value": 2}}}]}`,
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestAverageOutputAndBase(t *testing.T) {
	doc := `{"feature_names": ["x"], "average_output": true, "tree_info": [
	  {"tree_structure": {"leaf_value": 10}},
	  {"tree_structure": {"leaf_value": 20}}
	]}`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.Score([]float64{0}); got != 15 {
		t.Fatalf("average = %v", got)
	}

	doc = `{"feature_names": ["x"], "base_score": 30000, "tree_info": [{"tree_structure": {"leaf_value": 500}}]}`
	m, err = Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.Score([]float64{0}); got != 30500 {
		t.Fatalf("base = %v", got)
	}
}

func TestRegressorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housing.json")
	if err := os.WriteFile(path, []byte(housingDump), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := NewRegressor(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer r.Close()
	if r.Backend() != Backend || r.Model().Trees() != 2 {
		t.Fatalf("backend=%s trees=%d", r.Backend(), r.Model().Trees())
	}
	got, err := r.Predict(context.Background(), row("Detached", 2017))
	if err != nil || got != 340000 {
		t.Fatalf("predict = %v, %v", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Predict(ctx, row("Detached", 2017)); err == nil {
		t.Fatalf("expected cancelled context error")
	}
	if _, err := NewRegressor(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
