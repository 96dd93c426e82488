package models

import (
	"strconv"
	"strings"
)

type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
)

func (k ColumnKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column is one named cell of a single-row feature table.
type Column struct {
	Name string
	Kind ColumnKind
	Num  float64
	Cat  string
}

// Value returns the cell as a JSON-friendly scalar.
func (c Column) Value() interface{} {
	if c.Kind == Categorical {
		return c.Cat
	}
	return c.Num
}

func Num(name string, v float64) Column { return Column{Name: name, Kind: Numeric, Num: v} }

func Cat(name string, v string) Column { return Column{Name: name, Kind: Categorical, Cat: v} }

func Flag(name string, b bool) Column { return Num(name, boolFloat(b)) }

func IntCol(name string, v int) Column { return Num(name, float64(v)) }

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FeatureRow is the single-row table handed to a regressor. Column order is
// significant and matches the order the model was trained with.
type FeatureRow []Column

func (r FeatureRow) Names() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Name
	}
	return out
}

func (r FeatureRow) Values() []interface{} {
	out := make([]interface{}, len(r))
	for i, c := range r {
		out[i] = c.Value()
	}
	return out
}

func (r FeatureRow) CategoricalNames() []string {
	var out []string
	for _, c := range r {
		if c.Kind == Categorical {
			out = append(out, c.Name)
		}
	}
	return out
}

func (r FeatureRow) Lookup(name string) (Column, bool) {
	for _, c := range r {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Map returns the row keyed by column name.
func (r FeatureRow) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for _, c := range r {
		out[c.Name] = c.Value()
	}
	return out
}

// Canonical renders the row as a stable string. Floats use the shortest
// representation that round-trips, so equal rows always render equally.
func (r FeatureRow) Canonical() string {
	var b strings.Builder
	for i, c := range r {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		if c.Kind == Categorical {
			b.WriteString(strconv.Quote(c.Cat))
		} else {
			b.WriteString(strconv.FormatFloat(c.Num, 'g', -1, 64))
		}
	}
	return b.String()
}
