// Package native scores LightGBM-style tree ensembles in process. Artifacts
// are the JSON produced by Booster.dump_model(); a scikit-learn gradient
// boosting model exported to the same layout loads the same way.
package native

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"UKPredict/internal/domain/models"
)

// ErrSchema is returned when a row does not match the model's trained schema.
var ErrSchema = errors.New("feature schema mismatch")

type node struct {
	SplitFeature *int            `json:"split_feature"`
	Threshold    json.RawMessage `json:"threshold"`
	DecisionType string          `json:"decision_type"`
	DefaultLeft  bool            `json:"default_left"`
	MissingType  string          `json:"missing_type"`
	LeftChild    *node           `json:"left_child"`
	RightChild   *node           `json:"right_child"`
	LeafValue    float64         `json:"leaf_value"`

	num  float64
	cats map[int]struct{}
}

type treeInfo struct {
	TreeIndex int     `json:"tree_index"`
	Shrinkage float64 `json:"shrinkage"`
	Root      *node   `json:"tree_structure"`
}

type dump struct {
	Name              string     `json:"name"`
	Objective         string     `json:"objective"`
	AverageOutput     bool       `json:"average_output"`
	FeatureNames      []string   `json:"feature_names"`
	Trees             []treeInfo `json:"tree_info"`
	PandasCategorical [][]any    `json:"pandas_categorical"`
	BaseScore         float64    `json:"base_score"`
}

// Model is an immutable tree ensemble.
type Model struct {
	features  []string
	levels    []map[string]int
	trees     []*node
	base      float64
	average   bool
	expOutput bool
}

// Load reads and compiles a dump file.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Model, error) {
	var d dump
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(d.FeatureNames) == 0 {
		return nil, fmt.Errorf("decode model: no feature_names")
	}
	if len(d.Trees) == 0 {
		return nil, fmt.Errorf("decode model: no trees")
	}

	m := &Model{
		features:  d.FeatureNames,
		base:      d.BaseScore,
		average:   d.AverageOutput,
		expOutput: expObjective(d.Objective),
	}
	for i, t := range d.Trees {
		if t.Root == nil {
			return nil, fmt.Errorf("tree %d: missing tree_structure", i)
		}
		if err := t.Root.compile(len(d.FeatureNames)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t.Root)
	}
	// Level lists are positional: the i-th list belongs to the i-th
	// categorical column in feature order.
	for _, lv := range d.PandasCategorical {
		idx := make(map[string]int, len(lv))
		for code, v := range lv {
			idx[levelString(v)] = code
		}
		m.levels = append(m.levels, idx)
	}
	return m, nil
}

func levelString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func expObjective(objective string) bool {
	for _, p := range []string{"poisson", "gamma", "tweedie"} {
		if strings.HasPrefix(objective, p) {
			return true
		}
	}
	return false
}

func (n *node) leaf() bool { return n.SplitFeature == nil }

func (n *node) compile(nfeat int) error {
	if n.leaf() {
		return nil
	}
	if *n.SplitFeature < 0 || *n.SplitFeature >= nfeat {
		return fmt.Errorf("split_feature %d out of range", *n.SplitFeature)
	}
	if n.LeftChild == nil || n.RightChild == nil {
		return fmt.Errorf("split node without children")
	}
	switch n.DecisionType {
	case "==":
		var s string
		if err := json.Unmarshal(n.Threshold, &s); err != nil {
			return fmt.Errorf("categorical threshold: %w", err)
		}
		n.cats = make(map[int]struct{})
		for _, part := range strings.Split(s, "||") {
			c, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("categorical threshold %q: %w", s, err)
			}
			n.cats[c] = struct{}{}
		}
	case "<=", "":
		if err := json.Unmarshal(n.Threshold, &n.num); err != nil {
			return fmt.Errorf("numeric threshold: %w", err)
		}
	default:
		return fmt.Errorf("unsupported decision_type %q", n.DecisionType)
	}
	if err := n.LeftChild.compile(nfeat); err != nil {
		return err
	}
	return n.RightChild.compile(nfeat)
}

// FeatureNames lists the columns in training order.
func (m *Model) FeatureNames() []string {
	return append([]string(nil), m.features...)
}

// Trees is the number of trees in the ensemble.
func (m *Model) Trees() int { return len(m.trees) }

// Vectorize maps a row onto the model's feature order. Categorical columns
// become their training category code; unknown levels become NaN.
func (m *Model) Vectorize(row models.FeatureRow) ([]float64, error) {
	x := make([]float64, len(m.features))
	catIdx := 0
	for i, name := range m.features {
		col, ok := row.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
		}
		if col.Kind == models.Numeric {
			x[i] = col.Num
			continue
		}
		if catIdx >= len(m.levels) {
			return nil, fmt.Errorf("%w: column %q is categorical but the model has no levels for it", ErrSchema, name)
		}
		levels := m.levels[catIdx]
		catIdx++
		if code, ok := levels[col.Cat]; ok {
			x[i] = float64(code)
		} else {
			x[i] = math.NaN()
		}
	}
	if catIdx != len(m.levels) {
		return nil, fmt.Errorf("%w: model expects %d categorical columns, row has %d", ErrSchema, len(m.levels), catIdx)
	}
	return x, nil
}

// Score sums the leaf outputs for x.
func (m *Model) Score(x []float64) float64 {
	sum := m.base
	for _, t := range m.trees {
		sum += t.eval(x)
	}
	if m.average {
		sum /= float64(len(m.trees))
	}
	if m.expOutput {
		return math.Exp(sum)
	}
	return sum
}

func (m *Model) Predict(row models.FeatureRow) (float64, error) {
	x, err := m.Vectorize(row)
	if err != nil {
		return 0, err
	}
	y := m.Score(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("model produced non-finite output %v", y)
	}
	return y, nil
}
