package features

// hourProfile is the typical national demand in MW for each hour of the day.
var hourProfile = [24]float64{
	23000, 21000, 20000, 19500, 19000, 20000,
	24000, 30000, 35000, 37000, 38000, 38500,
	38000, 37500, 37000, 36500, 37000, 39000,
	41000, 42000, 40000, 37000, 32000, 27000,
}

var seasonMultiplier = [4]float64{
	Winter: 1.15,
	Spring: 1.0,
	Summer: 0.85,
	Autumn: 1.05,
}

const (
	weekendMultiplier = 0.90
	fallbackStd24h    = 2500
)

func typicalDemand(hour, season int, weekend bool) float64 {
	d := hourProfile[hour] * seasonMultiplier[season]
	if weekend {
		d *= weekendMultiplier
	}
	return d
}

// lag3hProfile is the profile three hours back with the seasonal multiplier
// applied. The weekend multiplier is not applied. Autumn scales by 1.05 here
// like every other fallback feature; the deployed encoder left Autumn at 1.0,
// so Autumn fallback vectors differ from it in this one column.
func lag3hProfile(hour, season int) float64 {
	return hourProfile[(hour+21)%24] * seasonMultiplier[season]
}

// lagStats holds the eight lag and rolling features.
type lagStats struct {
	lag1   float64
	lag1d  float64
	lag3h  float64
	lag7d  float64
	mean24 float64
	std24  float64
	mean7d float64
	diff24 float64
}

func fallbackStats(hour, season int, weekend bool) lagStats {
	typical := typicalDemand(hour, season, weekend)
	return lagStats{
		lag1:   typical * 0.98,
		lag1d:  typical,
		lag3h:  lag3hProfile(hour, season),
		lag7d:  typical,
		mean24: typical * 0.98,
		std24:  fallbackStd24h,
		mean7d: typical * 0.99,
		diff24: typical * 0.02,
	}
}
