package sales

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange is a preset window relative to today.
type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// Clock returns the current time.
type Clock func() time.Time

// CutoverFunc returns the last day served by the analytics endpoint.
// Predictions start on the following day.
type CutoverFunc func() Day

// FixedCutover always returns the same cutover day.
func FixedCutover(day Day) CutoverFunc {
	return func() Day { return day }
}

// TodayCutover uses the clock's current date as the cutover.
func TodayCutover(clock Clock) CutoverFunc {
	if clock == nil {
		clock = time.Now
	}
	return func() Day { return DayOf(clock()) }
}

// ParseCutover reads a configured cutover: "today" selects TodayCutover,
// anything else must be a date.
func ParseCutover(value string, clock Clock) (CutoverFunc, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "today") {
		return TodayCutover(clock), nil
	}
	day, err := ParseDay(value)
	if err != nil {
		return nil, fmt.Errorf("sales: parse cutover: %w", err)
	}
	return FixedCutover(day), nil
}

// ApplyRange returns the [start, end] window for a preset starting at today.
func ApplyRange(r TimeRange, today time.Time) (Day, Day, error) {
	var end time.Time
	switch r {
	case RangeWeek:
		end = today.AddDate(0, 0, 7)
	case RangeMonth:
		end = today.AddDate(0, 1, 0)
	case RangeYear:
		end = today.AddDate(1, 0, 0)
	default:
		return 0, 0, invalidQuery("unknown time range %q", r)
	}
	return DayOf(today), DayOf(end), nil
}

// Windows holds the resolved analytics and prediction date windows.
type Windows struct {
	AnalyticsStart  Day
	AnalyticsEnd    Day
	PredictionStart Day
	PredictionEnd   Day
}

// ResolveWindows splits the query range at the cutover: analytics covers
// [start, min(cutover, end)], prediction covers [max(cutover+1, start), end].
// A range lying entirely on one side of the cutover leaves the other window
// empty.
func ResolveWindows(q Query, cutover Day) Windows {
	return Windows{
		AnalyticsStart:  q.StartDate,
		AnalyticsEnd:    min(cutover, q.EndDate),
		PredictionStart: max(cutover.AddDays(1), q.StartDate),
		PredictionEnd:   q.EndDate,
	}
}

// HasAnalytics reports whether the analytics window covers at least one day.
func (w Windows) HasAnalytics() bool {
	return w.AnalyticsStart <= w.AnalyticsEnd
}

// HasPrediction reports whether the prediction window covers at least one day.
func (w Windows) HasPrediction() bool {
	return w.PredictionStart <= w.PredictionEnd
}
