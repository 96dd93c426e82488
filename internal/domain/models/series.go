package models

import (
	"math"
	"sort"
	"time"
)

// DemandPoint is one settlement-period observation of national demand.
type DemandPoint struct {
	At       time.Time
	DemandMW float64
}

// Series is an immutable, time-ascending demand history.
type Series struct {
	points []DemandPoint
}

// NewSeries drops points with a zero time or a NaN/Inf value and sorts the
// rest by time. Equal timestamps keep their input order.
func NewSeries(points []DemandPoint) *Series {
	clean := make([]DemandPoint, 0, len(points))
	for _, p := range points {
		if p.At.IsZero() || math.IsNaN(p.DemandMW) || math.IsInf(p.DemandMW, 0) {
			continue
		}
		clean = append(clean, p)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].At.Before(clean[j].At) })
	return &Series{points: clean}
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// At returns the i-th point in time order.
func (s *Series) At(i int) DemandPoint { return s.points[i] }

func (s *Series) First() (DemandPoint, bool) {
	if s.Len() == 0 {
		return DemandPoint{}, false
	}
	return s.points[0], true
}

func (s *Series) Last() (DemandPoint, bool) {
	if s.Len() == 0 {
		return DemandPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// CountBefore returns how many points are strictly before t.
func (s *Series) CountBefore(t time.Time) int {
	if s == nil {
		return 0
	}
	return sort.Search(len(s.points), func(i int) bool { return !s.points[i].At.Before(t) })
}

// CountAtOrBefore returns how many points are at or before t.
func (s *Series) CountAtOrBefore(t time.Time) int {
	if s == nil {
		return 0
	}
	return sort.Search(len(s.points), func(i int) bool { return s.points[i].At.After(t) })
}
