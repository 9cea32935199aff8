package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// offsetPattern matches the HH:MM tail of a numeric timezone offset.
var offsetPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// SplitBucket splits an ISO8601 bucket timestamp into its date and
// time-of-day parts, stripping any timezone offset from the time. A `-` can
// be both a date separator and a negative-offset separator, so the offset is
// only cut at the last `-` when the trailing token looks like HH:MM.
func SplitBucket(bucket string) (date, timeOfDay string) {
	date, timeOfDay, found := strings.Cut(bucket, "T")
	if !found {
		return bucket, ""
	}

	timeOfDay = strings.TrimSuffix(timeOfDay, "Z")
	if idx := strings.Index(timeOfDay, "+"); idx >= 0 {
		timeOfDay = timeOfDay[:idx]
	} else if idx := strings.LastIndex(timeOfDay, "-"); idx >= 0 && offsetPattern.MatchString(timeOfDay[idx+1:]) {
		timeOfDay = timeOfDay[:idx]
	}

	// Sub-second precision never reaches Notion.
	if idx := strings.Index(timeOfDay, "."); idx >= 0 {
		timeOfDay = timeOfDay[:idx]
	}
	return date, timeOfDay
}

// InferGranularity picks the aggregation unit from the query span when the
// caller did not set one: up to two hours resolves to minute, up to two days
// to hour, anything longer to day. Boundary values fall into the smaller
// bucket.
func InferGranularity(start, end time.Time) entity.Granularity {
	span := end.Sub(start)
	switch {
	case span <= 2*time.Hour:
		return entity.GranularityMinute
	case span <= 48*time.Hour:
		return entity.GranularityHour
	default:
		return entity.GranularityDay
	}
}

// MapRecords converts canonical entries into Notion-ready records grouped by
// key alias ("Unknown" when the API gave none). Only time-series entries
// carry a bucket date; summary-shaped entries have no date to key a page on
// and are not mapped. The time-of-day is attached only for minute and hour
// granularity; day and coarser keep the date alone.
func MapRecords(entries []entity.UsageEntry, granularity entity.Granularity) map[string][]entity.UsageRecord {
	byAuth := make(map[string][]entity.UsageRecord)

	for _, e := range entries {
		if e.BucketDate == "" {
			continue
		}

		alias := e.AuthMethod
		if alias == "" {
			alias = "Unknown"
		}

		rec := entity.UsageRecord{
			Date:       e.BucketDate,
			Model:      e.EndpointID,
			Requests:   e.Requests,
			Quantity:   e.Quantity,
			Cost:       e.Cost,
			UnitPrice:  e.UnitPrice,
			AuthMethod: alias,
		}
		if granularity.HasTimeOfDay() {
			rec.Time = e.BucketTime
		}
		byAuth[alias] = append(byAuth[alias], rec)
	}
	return byAuth
}
