package service

import (
	"testing"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

func TestSplitBucket(t *testing.T) {
	tests := []struct {
		bucket   string
		wantDate string
		wantTime string
	}{
		{"2024-03-05T14:00:00Z", "2024-03-05", "14:00:00"},
		{"2024-03-05T14:00:00+09:00", "2024-03-05", "14:00:00"},
		{"2024-03-05T14:00:00-05:00", "2024-03-05", "14:00:00"},
		{"2024-03-05T14:00:00.123Z", "2024-03-05", "14:00:00"},
		{"2024-03-05T14:00:00", "2024-03-05", "14:00:00"},
		{"2024-03-05", "2024-03-05", ""},
	}

	for _, tc := range tests {
		date, timeOfDay := SplitBucket(tc.bucket)
		if date != tc.wantDate || timeOfDay != tc.wantTime {
			t.Errorf("SplitBucket(%q) = (%q, %q), want (%q, %q)",
				tc.bucket, date, timeOfDay, tc.wantDate, tc.wantTime)
		}
	}
}

func TestInferGranularity(t *testing.T) {
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		span time.Duration
		want entity.Granularity
	}{
		{"one hour", time.Hour, entity.GranularityMinute},
		{"exactly two hours is still minute", 2 * time.Hour, entity.GranularityMinute},
		{"just over two hours", 2*time.Hour + time.Second, entity.GranularityHour},
		{"one day", 24 * time.Hour, entity.GranularityHour},
		{"exactly two days is still hour", 48 * time.Hour, entity.GranularityHour},
		{"just over two days", 48*time.Hour + time.Second, entity.GranularityDay},
		{"a week", 7 * 24 * time.Hour, entity.GranularityDay},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferGranularity(start, start.Add(tc.span)); got != tc.want {
				t.Errorf("InferGranularity(+%v) = %v, want %v", tc.span, got, tc.want)
			}
		})
	}
}

func TestMapRecordsDayGranularityDropsTime(t *testing.T) {
	entries := []entity.UsageEntry{{
		EndpointID: "m1",
		BucketDate: "2024-03-05",
		BucketTime: "14:00:00",
		Requests:   3,
		Quantity:   3,
		Cost:       0.3,
		UnitPrice:  0.1,
		AuthMethod: "k1",
	}}

	byAuth := MapRecords(entries, entity.GranularityDay)
	recs := byAuth["k1"]
	if len(recs) != 1 {
		t.Fatalf("expected 1 record for k1, got %d", len(recs))
	}
	if recs[0].Date != "2024-03-05" {
		t.Errorf("Date = %q, want 2024-03-05", recs[0].Date)
	}
	if recs[0].Time != "" {
		t.Errorf("day-granularity record must not carry a time, got %q", recs[0].Time)
	}
}

func TestMapRecordsHourGranularityKeepsTime(t *testing.T) {
	entries := []entity.UsageEntry{{
		EndpointID: "m1",
		BucketDate: "2024-03-05",
		BucketTime: "14:00:00",
	}}

	for _, g := range []entity.Granularity{entity.GranularityMinute, entity.GranularityHour} {
		byAuth := MapRecords(entries, g)
		recs := byAuth["Unknown"]
		if len(recs) != 1 {
			t.Fatalf("granularity %v: expected 1 record, got %d", g, len(recs))
		}
		if recs[0].Time != "14:00:00" {
			t.Errorf("granularity %v: Time = %q, want 14:00:00", g, recs[0].Time)
		}
	}
}

func TestMapRecordsGroupsByAlias(t *testing.T) {
	entries := []entity.UsageEntry{
		{EndpointID: "m1", BucketDate: "2024-03-05", AuthMethod: "k1"},
		{EndpointID: "m2", BucketDate: "2024-03-05", AuthMethod: "k2"},
		{EndpointID: "m3", BucketDate: "2024-03-05"},
		{EndpointID: "summary-only"}, // no bucket date, not mappable
	}

	byAuth := MapRecords(entries, entity.GranularityDay)
	if len(byAuth) != 3 {
		t.Fatalf("expected 3 alias groups, got %d", len(byAuth))
	}
	if len(byAuth["Unknown"]) != 1 || byAuth["Unknown"][0].Model != "m3" {
		t.Errorf("entry without alias should land in the Unknown group")
	}
	for _, recs := range byAuth {
		for _, rec := range recs {
			if rec.Model == "summary-only" {
				t.Errorf("entry without a bucket date must not be mapped")
			}
		}
	}
}
