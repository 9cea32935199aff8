package entity

// UsageRecord is one Notion-ready usage row. Time is set only when the
// aggregation granularity is minute or hour.
type UsageRecord struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Model      string  `json:"model"`
	Requests   float64 `json:"requests"`
	Quantity   float64 `json:"quantity"`
	Cost       float64 `json:"cost"`
	UnitPrice  float64 `json:"unit_price"`
	AuthMethod string  `json:"auth_method,omitempty"`
	Time       string  `json:"time,omitempty"` // HH:MM:SS
}

// StoredPage is the slice of a remote page the reconciler compares against.
// Cost is a pointer so a page without the property is distinguishable from
// one whose cost is zero.
type StoredPage struct {
	ID         string
	Model      string
	AuthMethod string
	Time       string
	Cost       *float64
}

// UpsertOutcome is the decision the reconciler took for one record.
type UpsertOutcome int

const (
	OutcomeCreated UpsertOutcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

// UpsertStats are the batch-level counters reported after a save run.
type UpsertStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Add folds a single outcome into the counters.
func (s *UpsertStats) Add(o UpsertOutcome) {
	switch o {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeSkipped:
		s.Skipped++
	}
}
