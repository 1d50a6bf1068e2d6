package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday mid-afternoon, away from month and DST boundaries
var now = time.Date(2025, time.March, 12, 15, 42, 13, 0, time.UTC)

func TestResolve_Today(t *testing.T) {
	r := Resolve(FilterToday, now, nil)

	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 12, r.To.Day())
	assert.Equal(t, 23, r.To.Hour())
	assert.True(t, r.To.After(r.From))
}

func TestResolve_Last7Days_IncludesTodayAsOneOfSeven(t *testing.T) {
	r := Resolve(FilterLast7Days, now, nil)

	// March 6..12 inclusive is exactly 7 calendar days
	assert.Equal(t, time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 12, r.To.Day())

	days := int(r.To.Sub(r.From).Hours()/24) + 1
	assert.Equal(t, 7, days)
}

func TestResolve_Last30And90Days(t *testing.T) {
	r30 := Resolve(FilterLast30Days, now, nil)
	assert.Equal(t, time.Date(2025, time.February, 11, 0, 0, 0, 0, time.UTC), r30.From)

	r90 := Resolve(FilterLast90Days, now, nil)
	assert.Equal(t, time.Date(2024, time.December, 13, 0, 0, 0, 0, time.UTC), r90.From)
}

func TestResolve_ThisWeek_StartsMonday(t *testing.T) {
	r := Resolve(FilterThisWeek, now, nil)

	assert.Equal(t, time.Monday, r.From.Weekday())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), r.From)
}

func TestResolve_ThisWeek_OnSunday(t *testing.T) {
	sunday := time.Date(2025, time.March, 16, 9, 0, 0, 0, time.UTC)
	r := Resolve(FilterThisWeek, sunday, nil)

	// Sunday belongs to the week that started the previous Monday
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), r.From)
}

func TestResolve_ThisMonthAndYear(t *testing.T) {
	rm := Resolve(FilterThisMonth, now, nil)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), rm.From)

	ry := Resolve(FilterThisYear, now, nil)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), ry.From)
}

func TestResolve_Custom_ExpandsToFullDays(t *testing.T) {
	custom := &Custom{
		From: time.Date(2025, time.January, 5, 14, 30, 0, 0, time.UTC),
		To:   time.Date(2025, time.January, 20, 8, 15, 0, 0, time.UTC),
	}

	r := Resolve(FilterCustom, now, custom)

	assert.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 20, r.To.Day())
	assert.Equal(t, 23, r.To.Hour())
	assert.Equal(t, 59, r.To.Minute())
}

func TestResolve_Custom_WithoutBoundsFallsBackToToday(t *testing.T) {
	r := Resolve(FilterCustom, now, nil)
	today := Resolve(FilterToday, now, nil)

	assert.Equal(t, today, r)
}

func TestResolve_ToNeverBeforeFrom(t *testing.T) {
	filters := []Filter{
		FilterToday, FilterLast7Days, FilterLast30Days, FilterLast90Days,
		FilterThisWeek, FilterThisMonth, FilterThisYear,
	}

	for _, f := range filters {
		r := Resolve(f, now, nil)
		require.True(t, r.To.After(r.From), "filter %s: To %v not after From %v", f, r.To, r.From)
	}
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterLast30Days, ParseFilter("last-30-days"))
	assert.Equal(t, FilterCustom, ParseFilter("custom"))
	assert.Equal(t, FilterToday, ParseFilter(""))
	assert.Equal(t, FilterToday, ParseFilter("last-fortnight"))
}
