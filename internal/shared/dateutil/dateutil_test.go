package dateutil

import (
	"errors"
	"testing"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

func TestParseDateFormats(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, seoul)},
		{"2024-03-05T14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, seoul)},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.in, seoul)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDate("05/03/2024", seoul); err == nil {
		t.Errorf("slash-separated date should be rejected")
	}
}

func TestPresetRange(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		preset    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"today", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), now},
		{"yesterday", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)},
		{"last-7-days", time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), now},
		{"last-30-days", time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC), now},
		{"this-month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), now},
	}

	for _, tc := range tests {
		t.Run(tc.preset, func(t *testing.T) {
			start, end, err := PresetRange(tc.preset, now)
			if err != nil {
				t.Fatalf("PresetRange(%q) failed: %v", tc.preset, err)
			}
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Errorf("PresetRange(%q) = (%v, %v), want (%v, %v)",
					tc.preset, start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}

	if _, _, err := PresetRange("last-year", now); err == nil {
		t.Errorf("unknown preset should be rejected")
	}
}

func TestResolveRangeInverted(t *testing.T) {
	_, _, err := ResolveRange("", "2024-03-10", "2024-03-05", "UTC")
	if !errors.Is(err, types.ErrInvertedDateRange) {
		t.Fatalf("err = %v, want ErrInvertedDateRange", err)
	}
}

func TestResolveRangeExplicitDates(t *testing.T) {
	start, end, err := ResolveRange("", "2024-03-01", "2024-03-05", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Format("2006-01-02") != "2024-03-01" || end.Format("2006-01-02") != "2024-03-05" {
		t.Errorf("range = (%v, %v), want the explicit dates", start, end)
	}
}

func TestResolveRangeDefaultsToLast24Hours(t *testing.T) {
	start, end, err := ResolveRange("", "", "", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("default span = %v, want 24h", got)
	}
}

func TestFormatForAPI(t *testing.T) {
	seoul, _ := time.LoadLocation("Asia/Seoul")
	ts := time.Date(2024, 3, 5, 9, 0, 0, 0, seoul)

	if got := FormatForAPI(ts, true); got != "2024-03-05T00:00:00Z" {
		t.Errorf("with time = %q, want UTC-normalized timestamp", got)
	}
	if got := FormatForAPI(ts, false); got != "2024-03-05" {
		t.Errorf("date only = %q, want 2024-03-05", got)
	}
}
