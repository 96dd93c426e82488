package features

import (
	"math"
	"time"

	"UKPredict/internal/domain/models"
)

// Lookback selects how lag and rolling features are derived. It is either
// NoHistory, which uses the typical-demand profile, or WithHistory, which
// reads the observed series.
type Lookback interface {
	isLookback()
}

// NoHistory derives every lag and rolling feature from the hourly profile.
type NoHistory struct{}

// WithHistory derives lag and rolling features from observed demand. A
// series with no point strictly before the target behaves like NoHistory.
type WithHistory struct {
	Series *models.Series
}

func (NoHistory) isLookback() {}

func (WithHistory) isLookback() {}

// LookbackFor picks WithHistory when s has data and NoHistory otherwise.
func LookbackFor(s *models.Series) Lookback {
	if s.Len() == 0 {
		return NoHistory{}
	}
	return WithHistory{Series: s}
}

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// historyStats overlays observed values onto the fallback stats. The bool
// reports whether any point before t existed.
func historyStats(t time.Time, s *models.Series, fb lagStats) (lagStats, bool) {
	n := s.CountBefore(t)
	if n == 0 {
		return fb, false
	}

	st := fb
	st.lag1 = s.At(n - 1).DemandMW

	if v, ok := lastAtOrBefore(s, n, t.Add(-day)); ok {
		st.lag1d = v
	}
	if v, ok := lastAtOrBefore(s, n, t.Add(-3*time.Hour)); ok {
		st.lag3h = v
	}
	if v, ok := lastAtOrBefore(s, n, t.Add(-week)); ok {
		st.lag7d = v
	}

	// Window [t-24h, t) spans indices [lo, n).
	if lo := s.CountBefore(t.Add(-day)); lo < n {
		st.mean24, st.std24 = meanStd(s, lo, n)
		st.diff24 = st.lag1 - st.mean24
	}
	if lo := s.CountBefore(t.Add(-week)); lo < n {
		st.mean7d, _ = meanStd(s, lo, n)
	}
	return st, true
}

// lastAtOrBefore returns the last value at or before cut among the first n points.
func lastAtOrBefore(s *models.Series, n int, cut time.Time) (float64, bool) {
	k := s.CountAtOrBefore(cut)
	if k > n {
		k = n
	}
	if k == 0 {
		return 0, false
	}
	return s.At(k - 1).DemandMW, true
}

// meanStd returns the mean and sample standard deviation of points [lo, hi).
// The deviation of a single point is 0.
func meanStd(s *models.Series, lo, hi int) (float64, float64) {
	cnt := float64(hi - lo)
	var sum float64
	for i := lo; i < hi; i++ {
		sum += s.At(i).DemandMW
	}
	mean := sum / cnt
	if hi-lo < 2 {
		return mean, 0
	}
	var sq float64
	for i := lo; i < hi; i++ {
		d := s.At(i).DemandMW - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (cnt - 1))
}
