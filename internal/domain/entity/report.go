package entity

import "time"

// UsageReport bundles an aggregated ledger with the query that produced it,
// for display and export.
type UsageReport struct {
	EndpointIDs []string         `json:"endpoint_ids"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Timezone    string           `json:"timezone"`
	Timeframe   Granularity      `json:"timeframe,omitempty"`
	Ledger      *AggregateLedger `json:"ledger"`
}
