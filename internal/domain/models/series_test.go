package models

import (
	"math"
	"testing"
	"time"
)

func ts(h int) time.Time { return time.Date(2024, 6, 15, h, 0, 0, 0, time.UTC) }

func TestNewSeriesSortsAndDropsInvalid(t *testing.T) {
	s := NewSeries([]DemandPoint{
		{At: ts(3), DemandMW: 30},
		{At: ts(1), DemandMW: 10},
		{At: time.Time{}, DemandMW: 99},
		{At: ts(2), DemandMW: math.NaN()},
		{At: ts(2), DemandMW: 20},
	})
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	for i, want := range []float64{10, 20, 30} {
		if s.At(i).DemandMW != want {
			t.Fatalf("point %d = %v", i, s.At(i).DemandMW)
		}
	}
	first, _ := s.First()
	last, _ := s.Last()
	if !first.At.Equal(ts(1)) || !last.At.Equal(ts(3)) {
		t.Fatalf("first/last = %v %v", first.At, last.At)
	}
}

func TestSeriesCounts(t *testing.T) {
	s := NewSeries([]DemandPoint{{At: ts(1)}, {At: ts(2)}, {At: ts(3)}})
	if n := s.CountBefore(ts(2)); n != 1 {
		t.Fatalf("CountBefore = %d", n)
	}
	if n := s.CountAtOrBefore(ts(2)); n != 2 {
		t.Fatalf("CountAtOrBefore = %d", n)
	}
	if n := s.CountBefore(ts(0)); n != 0 {
		t.Fatalf("CountBefore(early) = %d", n)
	}
	var nilSeries *Series
	if nilSeries.Len() != 0 || nilSeries.CountBefore(ts(1)) != 0 {
		t.Fatalf("nil series should be empty")
	}
}

func TestFeatureRowCanonical(t *testing.T) {
	row := FeatureRow{Cat("county", "KENT"), Num("year", 2017), Flag("is_new_build", true)}
	want := `county="KENT"|year=2017|is_new_build=1`
	if got := row.Canonical(); got != want {
		t.Fatalf("canonical = %s", got)
	}
	if names := row.CategoricalNames(); len(names) != 1 || names[0] != "county" {
		t.Fatalf("categorical = %v", names)
	}
	if c, ok := row.Lookup("year"); !ok || c.Num != 2017 {
		t.Fatalf("lookup = %+v %v", c, ok)
	}
}
