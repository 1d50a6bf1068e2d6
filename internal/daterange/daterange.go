// Package daterange resolves the dashboard's named date filters into
// concrete calendar intervals.
package daterange

import "time"

// Filter is a named date filter selectable on the dashboard
type Filter string

const (
	FilterToday      Filter = "today"
	FilterLast7Days  Filter = "last-7-days"
	FilterLast30Days Filter = "last-30-days"
	FilterLast90Days Filter = "last-90-days"
	FilterThisWeek   Filter = "this-week"
	FilterThisMonth  Filter = "this-month"
	FilterThisYear   Filter = "this-year"
	FilterCustom     Filter = "custom"
)

// Range is a closed interval of time. From is always the start of a day
// and To the end of a day, so single-day ranges still satisfy To >= From.
type Range struct {
	From time.Time
	To   time.Time
}

// Custom holds the explicit bounds used with FilterCustom
type Custom struct {
	From time.Time
	To   time.Time
}

// Resolve maps a filter to the interval it covers relative to now.
// Rolling windows (last-N-days) count today as one of the N days. Weeks
// start on Monday. An unknown filter, or FilterCustom without stored
// bounds, falls back to today.
func Resolve(filter Filter, now time.Time, custom *Custom) Range {
	switch filter {
	case FilterToday:
		return Range{From: startOfDay(now), To: endOfDay(now)}
	case FilterLast7Days:
		return Range{From: startOfDay(now.AddDate(0, 0, -6)), To: endOfDay(now)}
	case FilterLast30Days:
		return Range{From: startOfDay(now.AddDate(0, 0, -29)), To: endOfDay(now)}
	case FilterLast90Days:
		return Range{From: startOfDay(now.AddDate(0, 0, -89)), To: endOfDay(now)}
	case FilterThisWeek:
		return Range{From: startOfWeek(now), To: endOfDay(now)}
	case FilterThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOfDay(now)}
	case FilterThisYear:
		first := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOfDay(now)}
	case FilterCustom:
		if custom == nil {
			return Range{From: startOfDay(now), To: endOfDay(now)}
		}
		return Range{From: startOfDay(custom.From), To: endOfDay(custom.To)}
	default:
		return Range{From: startOfDay(now), To: endOfDay(now)}
	}
}

// ParseFilter normalizes a query-string value into a Filter.
// Unknown values map to FilterToday, keeping Resolve total.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterToday, FilterLast7Days, FilterLast30Days, FilterLast90Days,
		FilterThisWeek, FilterThisMonth, FilterThisYear, FilterCustom:
		return Filter(s)
	default:
		return FilterToday
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// startOfWeek returns the Monday 00:00 of the week containing t
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return startOfDay(t.AddDate(0, 0, -(weekday - 1)))
}
