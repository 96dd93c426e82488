package features

import (
	"math"
	"testing"
	"time"

	"UKPredict/internal/domain/models"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFeatureNamesOrder(t *testing.T) {
	if FeatureCount != 33 {
		t.Fatalf("feature count = %d", FeatureCount)
	}
	row := Encode(at("2024-06-15T14:30:00"), NoHistory{}).Vector.Row()
	names := row.Names()
	if names[0] != "year" || names[FeatureCount-1] != "month_hour" {
		t.Fatalf("unexpected order: %v", names)
	}
	if names[DemandLag1] != "demand_lag_1" || names[IsDayAfterHoliday] != "is_day_after_holiday" {
		t.Fatalf("index constants out of sync: %v", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate feature %q", n)
		}
		seen[n] = true
	}
}

func TestEncodeDeterministic(t *testing.T) {
	s := models.NewSeries([]models.DemandPoint{
		{At: at("2024-06-14T14:00:00"), DemandMW: 30000},
		{At: at("2024-06-15T10:00:00"), DemandMW: 31000},
	})
	for _, lb := range []Lookback{NoHistory{}, WithHistory{Series: s}} {
		a := Encode(at("2024-06-15T14:30:00"), lb)
		b := Encode(at("2024-06-15T14:30:00"), lb)
		for i := range a.Vector {
			if math.Float64bits(a.Vector[i]) != math.Float64bits(b.Vector[i]) {
				t.Fatalf("%s differs: %v vs %v", FeatureNames[i], a.Vector[i], b.Vector[i])
			}
		}
	}
}

func TestQuarterAndSeason(t *testing.T) {
	wantQuarter := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}
	wantSeason := []int{Winter, Winter, Spring, Spring, Spring, Summer, Summer, Summer, Autumn, Autumn, Autumn, Winter}
	for m := 1; m <= 12; m++ {
		if q := QuarterOf(m); q != wantQuarter[m-1] {
			t.Fatalf("month %d: quarter %d", m, q)
		}
		if s := SeasonOf(time.Month(m)); s != wantSeason[m-1] {
			t.Fatalf("month %d: season %d", m, s)
		}
		v := Encode(time.Date(2024, time.Month(m), 10, 12, 0, 0, 0, time.UTC), NoHistory{}).Vector
		if int(v[Quarter]) != wantQuarter[m-1] || int(v[Season]) != wantSeason[m-1] {
			t.Fatalf("month %d: encoded quarter %v season %v", m, v[Quarter], v[Season])
		}
	}
}

func TestHolidayFlags(t *testing.T) {
	tests := []struct {
		at                    string
		holiday, before, after float64
	}{
		{"2024-12-25T12:00:00", 1, 0, 1},
		{"2024-12-24T00:00:00", 0, 0, 1},
		{"2024-12-26T08:00:00", 1, 1, 0},
		{"2024-12-27T08:00:00", 0, 1, 0},
		{"2024-06-15T14:30:00", 0, 0, 0},
		{"2030-12-25T12:00:00", 0, 0, 0},
	}
	for _, tt := range tests {
		v := Encode(at(tt.at), NoHistory{}).Vector
		if v[IsHoliday] != tt.holiday || v[IsDayBeforeHoliday] != tt.before || v[IsDayAfterHoliday] != tt.after {
			t.Fatalf("%s: holiday=%v before=%v after=%v", tt.at, v[IsHoliday], v[IsDayBeforeHoliday], v[IsDayAfterHoliday])
		}
	}
	v := Encode(at("2024-12-25T12:00:00"), NoHistory{}).Vector
	if v[HolidayHour] != 12 {
		t.Fatalf("holiday_hour = %v", v[HolidayHour])
	}
}

func TestEncodeSaturdayAfternoon(t *testing.T) {
	e := Encode(at("2024-06-15T14:30:00"), NoHistory{})
	v := e.Vector
	if v[IsWeekend] != 1 || v[DayOfWeekIdx] != 5 {
		t.Fatalf("weekend=%v dow=%v", v[IsWeekend], v[DayOfWeekIdx])
	}
	if v[Season] != Summer || v[IsBusinessHours] != 0 {
		t.Fatalf("season=%v business=%v", v[Season], v[IsBusinessHours])
	}
	if v[WeekendHour] != 14 || v[MonthHour] != 84 {
		t.Fatalf("weekend_hour=%v month_hour=%v", v[WeekendHour], v[MonthHour])
	}
	if v[WeekOfYear] != 24 {
		t.Fatalf("week_of_year = %v", v[WeekOfYear])
	}
	used := e.Used()
	if !used.IsWeekend || used.Season != 2 || used.Hour != 14 {
		t.Fatalf("features used = %+v", used)
	}
}

func TestFallbackProfile(t *testing.T) {
	e := Encode(at("2024-06-15T14:30:00"), NoHistory{})
	if e.HistoryUsed {
		t.Fatalf("history used without series")
	}
	v := e.Vector
	typical := typicalDemand(14, Summer, true)
	if math.Abs(typical-28305) > 1e-6 {
		t.Fatalf("typical = %v", typical)
	}
	if v[DemandRollingStd24h] != 2500 {
		t.Fatalf("std = %v", v[DemandRollingStd24h])
	}
	if v[DemandLag1d] != typical || v[DemandLag7d] != typical {
		t.Fatalf("lag1d=%v lag7d=%v want %v", v[DemandLag1d], v[DemandLag7d], typical)
	}
	if v[DemandLag1] != typical*0.98 || v[DemandRollingMean7d] != typical*0.99 {
		t.Fatalf("lag1=%v mean7d=%v", v[DemandLag1], v[DemandRollingMean7d])
	}
	if v[DemandDiffFrom24hAvg] != typical*0.02 {
		t.Fatalf("diff = %v", v[DemandDiffFrom24hAvg])
	}
	// Three hours before 14:00 is 11:00, with no weekend scaling.
	if math.Abs(v[DemandLag3h]-38500*0.85) > 1e-6 {
		t.Fatalf("lag3h = %v", v[DemandLag3h])
	}
	// Midnight wraps to 21:00.
	w := Encode(at("2024-01-10T00:00:00"), NoHistory{}).Vector
	if math.Abs(w[DemandLag3h]-37000*1.15) > 1e-6 {
		t.Fatalf("wrapped lag3h = %v", w[DemandLag3h])
	}
}

func TestHistorySinglePointWindow(t *testing.T) {
	target := at("2024-03-12T18:00:00")
	s := models.NewSeries([]models.DemandPoint{{At: target.Add(-24 * time.Hour), DemandMW: 33000}})
	e := Encode(target, WithHistory{Series: s})
	v := e.Vector
	if !e.HistoryUsed {
		t.Fatalf("history not used")
	}
	if v[DemandRollingMean24h] != 33000 || v[DemandRollingStd24h] != 0 {
		t.Fatalf("mean=%v std=%v", v[DemandRollingMean24h], v[DemandRollingStd24h])
	}
	if v[DemandLag1] != 33000 || v[DemandLag1d] != 33000 || v[DemandLag3h] != 33000 {
		t.Fatalf("lags = %v %v %v", v[DemandLag1], v[DemandLag1d], v[DemandLag3h])
	}
	if v[DemandDiffFrom24hAvg] != 0 || v[DemandRollingMean7d] != 33000 {
		t.Fatalf("diff=%v mean7d=%v", v[DemandDiffFrom24hAvg], v[DemandRollingMean7d])
	}
	// No record a week back, so lag_7d keeps the profile value.
	fb := Encode(target, NoHistory{}).Vector
	if v[DemandLag7d] != fb[DemandLag7d] {
		t.Fatalf("lag7d = %v want %v", v[DemandLag7d], fb[DemandLag7d])
	}
}

func TestHistoryWindows(t *testing.T) {
	target := at("2024-03-12T12:00:00")
	var pts []models.DemandPoint
	for h := 1; h <= 200; h++ {
		pts = append(pts, models.DemandPoint{At: target.Add(-time.Duration(h) * time.Hour), DemandMW: float64(h)})
	}
	// Records at or after the target are ignored.
	pts = append(pts, models.DemandPoint{At: target, DemandMW: 1e9}, models.DemandPoint{At: target.Add(time.Hour), DemandMW: 1e9})
	v := Encode(target, WithHistory{Series: models.NewSeries(pts)}).Vector

	if v[DemandLag1] != 1 || v[DemandLag3h] != 3 || v[DemandLag1d] != 24 || v[DemandLag7d] != 168 {
		t.Fatalf("lags = %v %v %v %v", v[DemandLag1], v[DemandLag3h], v[DemandLag1d], v[DemandLag7d])
	}
	// [t-24h, t) holds h = 1..24.
	if v[DemandRollingMean24h] != 12.5 {
		t.Fatalf("mean24 = %v", v[DemandRollingMean24h])
	}
	if want := math.Sqrt(50); math.Abs(v[DemandRollingStd24h]-want) > 1e-9 {
		t.Fatalf("std24 = %v want %v", v[DemandRollingStd24h], want)
	}
	if v[DemandDiffFrom24hAvg] != 1-12.5 {
		t.Fatalf("diff = %v", v[DemandDiffFrom24hAvg])
	}
	if v[DemandRollingMean7d] != 84.5 {
		t.Fatalf("mean7d = %v", v[DemandRollingMean7d])
	}
}

func TestHistoryWithoutPriorRecordsFallsBack(t *testing.T) {
	target := at("2024-03-12T12:00:00")
	s := models.NewSeries([]models.DemandPoint{{At: target.Add(time.Hour), DemandMW: 40000}})
	got := Encode(target, WithHistory{Series: s})
	want := Encode(target, NoHistory{})
	if got.HistoryUsed {
		t.Fatalf("history used with no prior records")
	}
	if got.Vector != want.Vector {
		t.Fatalf("vectors differ")
	}
	if _, ok := LookbackFor(nil).(NoHistory); !ok {
		t.Fatalf("nil series should select NoHistory")
	}
	if _, ok := LookbackFor(s).(WithHistory); !ok {
		t.Fatalf("non-empty series should select WithHistory")
	}
}
