// Package service holds the pure domain logic: usage normalization, cost
// resolution, record mapping, the upsert engine, and invoice validation.
package service

import (
	"encoding/json"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// rawUsageItem is the lenient decode target for one entry of either response
// shape. The Usage API is inconsistent about field names, so the synonym
// pairs quantity|units and requests|count are both accepted, and auth_method
// may be a plain string or an object carrying key_alias.
type rawUsageItem struct {
	EndpointID string          `json:"endpoint_id"`
	Quantity   *float64        `json:"quantity"`
	Units      *float64        `json:"units"`
	Requests   *float64        `json:"requests"`
	Count      *float64        `json:"count"`
	Cost       *float64        `json:"cost"`
	UnitPrice  *float64        `json:"unit_price"`
	AuthMethod json.RawMessage `json:"auth_method"`
}

func (r *rawUsageItem) quantity() float64 {
	if r.Quantity != nil {
		return *r.Quantity
	}
	if r.Units != nil {
		return *r.Units
	}
	return 0
}

func (r *rawUsageItem) requests() float64 {
	if r.Requests != nil {
		return *r.Requests
	}
	if r.Count != nil {
		return *r.Count
	}
	// The API omits a request count on some shapes; the quantity stands in
	// for it. Documented approximation, not a bug.
	return r.quantity()
}

// keyAlias extracts the API key alias from the auth_method field. A string
// is used as-is; an object yields its key_alias, defaulting to "Unknown".
// Returns "" when the field is absent entirely.
func (r *rawUsageItem) keyAlias() string {
	if len(r.AuthMethod) == 0 || string(r.AuthMethod) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.AuthMethod, &s); err == nil {
		return s
	}
	var obj struct {
		KeyAlias string `json:"key_alias"`
	}
	if err := json.Unmarshal(r.AuthMethod, &obj); err == nil && obj.KeyAlias != "" {
		return obj.KeyAlias
	}
	return "Unknown"
}

// resolveCost applies the cost fallback chain: an explicit non-zero cost is
// used verbatim; otherwise quantity times the unit price, taking the price
// from the entry itself, then the pricing map, then zero.
func resolveCost(r *rawUsageItem, pricing entity.PricingMap) (cost, unitPrice float64) {
	unitPrice = 0
	if r.UnitPrice != nil && *r.UnitPrice != 0 {
		unitPrice = *r.UnitPrice
	} else if p, ok := pricing[r.EndpointID]; ok {
		unitPrice = p
	}

	if r.Cost != nil && *r.Cost != 0 {
		return *r.Cost, unitPrice
	}
	return r.quantity() * unitPrice, unitPrice
}

// normalizeItem converts one raw item into a canonical entry. Returns false
// when the item is unusable (no endpoint_id, or not an object at all).
func normalizeItem(raw json.RawMessage, bucket string, pricing entity.PricingMap) (entity.UsageEntry, bool) {
	var item rawUsageItem
	if err := json.Unmarshal(raw, &item); err != nil || item.EndpointID == "" {
		return entity.UsageEntry{}, false
	}

	cost, unitPrice := resolveCost(&item, pricing)
	entry := entity.UsageEntry{
		EndpointID: item.EndpointID,
		Requests:   item.requests(),
		Quantity:   item.quantity(),
		UnitPrice:  unitPrice,
		Cost:       cost,
		AuthMethod: item.keyAlias(),
	}
	if bucket != "" {
		entry.BucketDate, entry.BucketTime = SplitBucket(bucket)
	}
	return entry, true
}

// Normalize converts a usage response into canonical entries. Both shapes
// are processed when present in the same document, each contributing
// independently. Entries without an endpoint_id are dropped silently.
func Normalize(resp *entity.UsageResponse, pricing entity.PricingMap) []entity.UsageEntry {
	if resp == nil {
		return nil
	}

	var entries []entity.UsageEntry
	for _, bucket := range resp.TimeSeries {
		for _, raw := range bucket.Results {
			if entry, ok := normalizeItem(raw, bucket.Bucket, pricing); ok {
				entries = append(entries, entry)
			}
		}
	}
	for _, raw := range resp.Summary {
		if entry, ok := normalizeItem(raw, "", pricing); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Accumulate folds entries into the ledger. Repeated entries for the same
// endpoint add up; entries without a key alias are attributed to the model
// and total buckets only.
func Accumulate(ledger *entity.AggregateLedger, entries []entity.UsageEntry) {
	for _, e := range entries {
		stats, ok := ledger.ByModel[e.EndpointID]
		if !ok {
			stats = &entity.ModelStats{UnitPrice: e.UnitPrice}
			ledger.ByModel[e.EndpointID] = stats
		}
		stats.Requests += e.Requests
		stats.Quantity += e.Quantity
		stats.Cost += e.Cost

		if e.AuthMethod != "" {
			auth, ok := ledger.ByAuthMethod[e.AuthMethod]
			if !ok {
				auth = &entity.AuthMethodStats{}
				ledger.ByAuthMethod[e.AuthMethod] = auth
			}
			auth.Requests += e.Requests
			auth.Quantity += e.Quantity
			auth.Cost += e.Cost
		}

		ledger.Total.Requests += e.Requests
		ledger.Total.Quantity += e.Quantity
		ledger.Total.Cost += e.Cost
	}
}

// Aggregate is the convenience path: normalize a response and fold it into a
// fresh ledger.
func Aggregate(resp *entity.UsageResponse, pricing entity.PricingMap) *entity.AggregateLedger {
	ledger := entity.NewAggregateLedger()
	Accumulate(ledger, Normalize(resp, pricing))
	return ledger
}
