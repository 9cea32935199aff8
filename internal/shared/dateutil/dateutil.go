// Package dateutil resolves date ranges for usage queries: presets, explicit
// dates in several formats, and ISO8601 formatting for the API.
package dateutil

import (
	"fmt"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS, or full ISO8601. A value
// without an offset is interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// LoadLocation resolves a timezone name, falling back to UTC for the empty
// string.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

// PresetRange returns the date range for a named preset, evaluated at now.
func PresetRange(preset string, now time.Time) (time.Time, time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch preset {
	case "today":
		return midnight, now, nil
	case "yesterday":
		start := midnight.AddDate(0, 0, -1)
		end := midnight.Add(-time.Second)
		return start, end, nil
	case "last-7-days":
		return midnight.AddDate(0, 0, -7), now, nil
	case "last-30-days":
		return midnight.AddDate(0, 0, -30), now, nil
	case "this-month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown preset: %s", preset)
	}
}

// DefaultRange returns the last 24 hours ending at now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	return now.Add(-24 * time.Hour), now
}

// ResolveRange resolves a preset or an explicit start/end pair into a date
// range. A preset takes precedence; with neither, the default 24-hour window
// is used. An inverted range is rejected.
func ResolveRange(preset, startDate, endDate, tz string) (time.Time, time.Time, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	now := time.Now().In(loc)

	var start, end time.Time
	switch {
	case preset != "":
		start, end, err = PresetRange(preset, now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	case startDate != "":
		start, err = ParseDate(startDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if endDate != "" {
			end, err = ParseDate(endDate, loc)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
		} else {
			end = now
		}
	default:
		start, end = DefaultRange(now)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, types.ErrInvertedDateRange
	}
	return start, end, nil
}

// FormatForAPI renders a timestamp as UTC ISO8601 with or without the time
// component.
func FormatForAPI(t time.Time, includeTime bool) string {
	utc := t.UTC()
	if includeTime {
		return utc.Format("2006-01-02T15:04:05Z")
	}
	return utc.Format("2006-01-02")
}
