package entity

import (
	"encoding/json"
	"time"
)

// UsageEntry is the canonical representation of one usage data point after
// normalization. Cost is always resolved to a concrete non-negative value;
// UnitPrice may be 0 when the price is genuinely unknown.
type UsageEntry struct {
	EndpointID string  `json:"endpoint_id"`
	BucketDate string  `json:"bucket_date,omitempty"` // YYYY-MM-DD, empty for summary-shaped entries
	BucketTime string  `json:"bucket_time,omitempty"` // HH:MM:SS, offset already stripped
	Requests   float64 `json:"requests"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Cost       float64 `json:"cost"`
	AuthMethod string  `json:"auth_method,omitempty"` // key alias, empty when the API gave none
}

// ModelStats accumulates usage for a single endpoint.
type ModelStats struct {
	Requests  float64 `json:"requests"`
	Quantity  float64 `json:"quantity"`
	Cost      float64 `json:"cost"`
	UnitPrice float64 `json:"unit_price"`
}

// AuthMethodStats accumulates usage for a single API key alias.
type AuthMethodStats struct {
	Requests float64 `json:"requests"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// Totals holds the grand totals across all models.
type Totals struct {
	Requests float64 `json:"requests"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// AggregateLedger is the in-memory aggregation target. Sums are accumulated,
// never overwritten, so repeated Accumulate calls add up.
type AggregateLedger struct {
	ByModel      map[string]*ModelStats      `json:"by_model"`
	ByAuthMethod map[string]*AuthMethodStats `json:"by_auth_method"`
	Total        Totals                      `json:"total"`
}

// NewAggregateLedger creates an empty ledger.
func NewAggregateLedger() *AggregateLedger {
	return &AggregateLedger{
		ByModel:      make(map[string]*ModelStats),
		ByAuthMethod: make(map[string]*AuthMethodStats),
	}
}

// UsageResponse is the lenient decode target for the Usage API. Both shapes
// may be present at once; missing or oddly typed sections decode to nil.
type UsageResponse struct {
	TimeSeries []TimeSeriesBucket `json:"time_series"`
	Summary    []json.RawMessage  `json:"summary"`
	Meta       map[string]any     `json:"_meta"`
}

// TimeSeriesBucket is one bucket of the time_series shape.
type TimeSeriesBucket struct {
	Bucket  string            `json:"bucket"`
	Results []json.RawMessage `json:"results"`
}

// UnmarshalJSON tolerates a summary that is not a list (some responses carry
// an object there); anything but an array decodes to an empty slice.
func (r *UsageResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		TimeSeries []TimeSeriesBucket `json:"time_series"`
		Summary    json.RawMessage    `json:"summary"`
		Meta       map[string]any     `json:"_meta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.TimeSeries = raw.TimeSeries
	r.Meta = raw.Meta
	r.Summary = nil
	if len(raw.Summary) > 0 {
		var items []json.RawMessage
		if err := json.Unmarshal(raw.Summary, &items); err == nil {
			r.Summary = items
		}
	}
	return nil
}

// PricingMap maps an endpoint ID to its unit price.
type PricingMap map[string]float64

// Granularity is the aggregation unit of a usage query.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
	GranularityWeek   Granularity = "week"
	GranularityMonth  Granularity = "month"
)

// HasTimeOfDay reports whether records at this granularity carry a Time field.
func (g Granularity) HasTimeOfDay() bool {
	return g == GranularityMinute || g == GranularityHour
}

// UsageQuery describes one Usage API request.
type UsageQuery struct {
	EndpointIDs      []string
	Start            time.Time
	End              time.Time
	Timeframe        Granularity // empty lets the API pick
	Timezone         string
	BoundToTimeframe bool
	Expand           []string
}
