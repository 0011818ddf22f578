package sales

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// APIDateLayout is the date form sent to the sales backend.
	APIDateLayout = "2006-01-02"
	// DisplayDateLayout is the date form used by tables and chart axes.
	DisplayDateLayout = "2006/01/02"
)

var parseLayouts = []string{APIDateLayout, DisplayDateLayout, "2006-1-2", "2006/1/2"}

// Day is a calendar date stored as days since 1970-01-01 (UTC). Every date
// coming from the backend is normalized to a Day before comparison.
type Day int32

// DayOf truncates t to its calendar date in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return DayFromParts(y, int(m), d)
}

// DayFromParts builds a Day from year, month (1-12) and day of month.
func DayFromParts(year, month, day int) Day {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return Day(t.Unix() / 86400)
}

// ParseDay accepts YYYY-MM-DD, YYYY/MM/DD and RFC 3339 timestamps.
func ParseDay(value string) (Day, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("sales: empty date")
	}
	if len(value) > len(APIDateLayout) && (value[10] == 'T' || value[10] == ' ') {
		value = value[:10]
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DayOf(t), nil
		}
	}
	return 0, fmt.Errorf("sales: unrecognized date %q", value)
}

// DayFromArray reassembles the [year, month, day, ...] form used by the
// backend's serialized LocalDate/LocalDateTime values.
func DayFromArray(parts []int) (Day, error) {
	if len(parts) < 3 {
		return 0, fmt.Errorf("sales: date array needs at least 3 elements, got %d", len(parts))
	}
	y, m, d := parts[0], parts[1], parts[2]
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, fmt.Errorf("sales: date array %v out of range", parts)
	}
	day := DayFromParts(y, m, d)
	if day.Time().Day() != d {
		return 0, fmt.Errorf("sales: date array %v is not a calendar date", parts)
	}
	return day, nil
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// AddDays shifts the day by n days.
func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.Time().Format(APIDateLayout)
}

// Display formats the day as YYYY/MM/DD.
func (d Day) Display() string {
	return d.Time().Format(DisplayDateLayout)
}

// MarshalJSON encodes the day in display form.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Display())
}

// UnmarshalJSON accepts either a date string or a numeric date array.
func (d *Day) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("sales: decode date array: %w", err)
		}
		parsed, err := DayFromArray(parts)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sales: decode date: %w", err)
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
