package features

import (
	"math"
	"time"

	"UKPredict/internal/domain/models"
)

// Feature positions. The model reads features by position and by name, so
// this order must never change.
const (
	Year = iota
	Month
	Day
	Hour
	DayOfWeekIdx
	Quarter
	WeekOfYear
	IsWeekend
	IsBusinessHours
	IsNight
	IsPeakMorning
	IsPeakEvening
	Season
	HourSin
	HourCos
	MonthSin
	MonthCos
	DayOfWeekSin
	DayOfWeekCos
	DemandLag1
	DemandLag1d
	DemandLag3h
	DemandLag7d
	DemandRollingMean24h
	DemandRollingStd24h
	DemandRollingMean7d
	DemandDiffFrom24hAvg
	IsHoliday
	IsDayBeforeHoliday
	IsDayAfterHoliday
	WeekendHour
	HolidayHour
	MonthHour

	FeatureCount
)

var FeatureNames = [FeatureCount]string{
	"year", "month", "day", "hour", "day_of_week", "quarter", "week_of_year",
	"is_weekend", "is_business_hours", "is_night", "is_peak_morning", "is_peak_evening",
	"season",
	"hour_sin", "hour_cos", "month_sin", "month_cos", "day_of_week_sin", "day_of_week_cos",
	"demand_lag_1", "demand_lag_1d", "demand_lag_3h", "demand_lag_7d",
	"demand_rolling_mean_24h", "demand_rolling_std_24h", "demand_rolling_mean_7d",
	"demand_diff_from_24h_avg",
	"is_holiday", "is_day_before_holiday", "is_day_after_holiday",
	"weekend_hour", "holiday_hour", "month_hour",
}

// FeatureCategories groups feature names for model metadata.
var FeatureCategories = map[string][]string{
	"temporal":          {"year", "month", "day", "hour", "day_of_week", "quarter", "week_of_year"},
	"binary_indicators": {"is_weekend", "is_business_hours", "is_night", "is_peak_morning", "is_peak_evening"},
	"seasonal":          {"season"},
	"cyclical":          {"hour_sin", "hour_cos", "month_sin", "month_cos", "day_of_week_sin", "day_of_week_cos"},
	"lag_features":      {"demand_lag_1", "demand_lag_1d", "demand_lag_3h", "demand_lag_7d"},
	"rolling_stats":     {"demand_rolling_mean_24h", "demand_rolling_std_24h", "demand_rolling_mean_7d", "demand_diff_from_24h_avg"},
	"holidays":          {"is_holiday", "is_day_before_holiday", "is_day_after_holiday"},
	"interactions":      {"weekend_hour", "holiday_hour", "month_hour"},
}

type Vector [FeatureCount]float64

// Encoding is the encoder output plus which lookback tier produced it.
type Encoding struct {
	At          time.Time
	Vector      Vector
	HistoryUsed bool
}

// Encode derives the electricity feature vector for t. It never fails:
// missing or insufficient history falls back to the typical-demand profile.
func Encode(t time.Time, lb Lookback) Encoding {
	year, month, dom := t.Date()
	hour := t.Hour()
	dow := DayOfWeek(t)
	_, isoWeek := t.ISOWeek()
	season := SeasonOf(month)

	weekend := dow >= 5
	holiday := IsBankHoliday(t)

	stats := fallbackStats(hour, season, weekend)
	used := false
	switch lb := lb.(type) {
	case WithHistory:
		stats, used = historyStats(t, lb.Series, stats)
	case NoHistory, nil:
	}

	h, m, d := float64(hour), float64(month), float64(dow)

	var v Vector
	v[Year] = float64(year)
	v[Month] = m
	v[Day] = float64(dom)
	v[Hour] = h
	v[DayOfWeekIdx] = d
	v[Quarter] = float64(QuarterOf(int(month)))
	v[WeekOfYear] = float64(isoWeek)
	v[IsWeekend] = flag(weekend)
	v[IsBusinessHours] = flag(hour >= 8 && hour <= 18 && !weekend)
	v[IsNight] = flag(hour >= 23 || hour <= 5)
	v[IsPeakMorning] = flag(hour >= 7 && hour <= 9)
	v[IsPeakEvening] = flag(hour >= 17 && hour <= 20)
	v[Season] = float64(season)
	v[HourSin] = math.Sin(2 * math.Pi * h / 24)
	v[HourCos] = math.Cos(2 * math.Pi * h / 24)
	v[MonthSin] = math.Sin(2 * math.Pi * m / 12)
	v[MonthCos] = math.Cos(2 * math.Pi * m / 12)
	v[DayOfWeekSin] = math.Sin(2 * math.Pi * d / 7)
	v[DayOfWeekCos] = math.Cos(2 * math.Pi * d / 7)
	v[DemandLag1] = stats.lag1
	v[DemandLag1d] = stats.lag1d
	v[DemandLag3h] = stats.lag3h
	v[DemandLag7d] = stats.lag7d
	v[DemandRollingMean24h] = stats.mean24
	v[DemandRollingStd24h] = stats.std24
	v[DemandRollingMean7d] = stats.mean7d
	v[DemandDiffFrom24hAvg] = stats.diff24
	v[IsHoliday] = flag(holiday)
	// The "before"/"after" flags test the previous and next calendar day.
	v[IsDayBeforeHoliday] = flag(IsBankHoliday(t.AddDate(0, 0, -1)))
	v[IsDayAfterHoliday] = flag(IsBankHoliday(t.AddDate(0, 0, 1)))
	v[WeekendHour] = flag(weekend) * h
	v[HolidayHour] = flag(holiday) * h
	v[MonthHour] = m * h

	return Encoding{At: t, Vector: v, HistoryUsed: used}
}

// Row converts the vector into a numeric feature row in schema order.
func (v Vector) Row() models.FeatureRow {
	row := make(models.FeatureRow, FeatureCount)
	for i := range v {
		row[i] = models.Num(FeatureNames[i], v[i])
	}
	return row
}

// Named returns the vector as name/value pairs.
func (v Vector) Named() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i := range v {
		out[FeatureNames[i]] = v[i]
	}
	return out
}

// Used extracts the subset echoed back to callers.
func (e Encoding) Used() models.FeaturesUsed {
	v := e.Vector
	return models.FeaturesUsed{
		Year:           int(v[Year]),
		Month:          int(v[Month]),
		Hour:           int(v[Hour]),
		IsWeekend:      v[IsWeekend] == 1,
		Season:         int(v[Season]),
		DemandLag1d:    v[DemandLag1d],
		RollingMean24h: v[DemandRollingMean24h],
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
