package features

import (
	"time"

	"UKPredict/pkg/util"
)

// ukBankHolidays covers England and Wales for 2023 through 2026 only.
// Dates outside that range never match.
var ukBankHolidays = newDateSet(
	"2023-01-01", "2023-01-02", "2023-04-07", "2023-04-10", "2023-05-01", "2023-05-29",
	"2023-08-28", "2023-12-25", "2023-12-26",
	"2024-01-01", "2024-03-29", "2024-04-01", "2024-05-06", "2024-05-27",
	"2024-08-26", "2024-12-25", "2024-12-26",
	"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-05", "2025-05-26",
	"2025-08-25", "2025-12-25", "2025-12-26",
	"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-04", "2026-05-25",
	"2026-08-31", "2026-12-25", "2026-12-28",
)

const (
	HolidayFirstYear = 2023
	HolidayLastYear  = 2026
)

type dateSet map[string]struct{}

func newDateSet(dates ...string) dateSet {
	s := make(dateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s dateSet) has(t time.Time) bool {
	_, ok := s[util.DateKey(t)]
	return ok
}

// IsBankHoliday reports whether t falls on a listed UK bank holiday.
func IsBankHoliday(t time.Time) bool { return ukBankHolidays.has(t) }

// HolidayCovered reports whether t's year is inside the holiday table.
func HolidayCovered(t time.Time) bool {
	return t.Year() >= HolidayFirstYear && t.Year() <= HolidayLastYear
}

// Season codes as the model was trained on them.
const (
	Winter = 0
	Spring = 1
	Summer = 2
	Autumn = 3
)

var seasonByMonth = [13]int{
	time.December: Winter, time.January: Winter, time.February: Winter,
	time.March: Spring, time.April: Spring, time.May: Spring,
	time.June: Summer, time.July: Summer, time.August: Summer,
	time.September: Autumn, time.October: Autumn, time.November: Autumn,
}

func SeasonOf(m time.Month) int { return seasonByMonth[m] }

// SeasonName is used for logs and the CLI.
func SeasonName(season int) string {
	switch season {
	case Winter:
		return "Winter"
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	}
	return "Unknown"
}

func QuarterOf(month int) int { return (month-1)/3 + 1 }

// DayOfWeek numbers Monday as 0 and Sunday as 6.
func DayOfWeek(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }
