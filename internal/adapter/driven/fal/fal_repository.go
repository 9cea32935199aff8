package fal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/dateutil"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

const (
	baseURL         = "https://api.fal.ai/v1/models"
	usageEndpoint   = baseURL + "/usage"
	pricingEndpoint = baseURL + "/pricing"

	maxEndpointIDs = 50

	// With three or more endpoints the API is queried per endpoint; the
	// limiter spaces those calls out.
	batchThreshold = 3
)

// FalRepositoryImpl implements FalRepository over the fal.ai HTTP API.
type FalRepositoryImpl struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFalRepository creates a fal.ai API client authenticated with the given
// admin key.
func NewFalRepository(apiKey string) repository.FalRepository {
	return &FalRepositoryImpl{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// retryAfter reports how long the server asked us to wait, or 0.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// apiError is the error body shape the API returns on non-200 responses.
type apiError struct {
	Detail string `json:"detail"`
}

// doGet issues one GET with capped exponential backoff. Responses with
// status 429 or 5xx are retried; a Retry-After header overrides the
// computed backoff delay.
func (r *FalRepositoryImpl) doGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var body []byte

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Key "+r.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusOK {
			body = data
			return nil
		}

		var detail apiError
		_ = json.Unmarshal(data, &detail)
		apiErr := fmt.Errorf("API call failed: %d", resp.StatusCode)
		if detail.Detail != "" {
			apiErr = fmt.Errorf("API call failed: %d - %s", resp.StatusCode, detail.Detail)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if wait := retryAfter(resp); wait > 0 {
				return backoff.RetryAfter(int(wait / time.Second))
			}
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// fetchUsagePages follows the cursor until the API reports no more pages and
// merges all pages into one response.
func (r *FalRepositoryImpl) fetchUsagePages(ctx context.Context, params url.Values) (*entity.UsageResponse, error) {
	merged := &entity.UsageResponse{}

	for {
		body, err := r.doGet(ctx, usageEndpoint, params)
		if err != nil {
			return nil, err
		}

		var page entity.UsageResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding usage response: %w", err)
		}
		var pagination struct {
			Cursor  string `json:"cursor"`
			HasMore bool   `json:"has_more"`
		}
		if err := json.Unmarshal(body, &pagination); err != nil {
			return nil, fmt.Errorf("decoding usage response: %w", err)
		}

		merged.TimeSeries = append(merged.TimeSeries, page.TimeSeries...)
		merged.Summary = append(merged.Summary, page.Summary...)
		if page.Meta != nil {
			merged.Meta = page.Meta
		}

		if !pagination.HasMore || pagination.Cursor == "" {
			return merged, nil
		}
		params.Set("cursor", pagination.Cursor)
	}
}

func usageParams(query entity.UsageQuery, endpointIDs []string) url.Values {
	params := url.Values{}
	params.Set("endpoint_id", strings.Join(endpointIDs, ","))
	params.Set("start", dateutil.FormatForAPI(query.Start, true))
	params.Set("end", dateutil.FormatForAPI(query.End, true))
	params.Set("timezone", query.Timezone)
	params.Set("bound_to_timeframe", strconv.FormatBool(query.BoundToTimeframe))
	params.Set("expand", strings.Join(query.Expand, ","))
	if query.Timeframe != "" {
		params.Set("timeframe", string(query.Timeframe))
	}
	return params
}

// GetUsage fetches usage data for the queried endpoints. Small selections go
// out as a single comma-joined request; three or more endpoints are fetched
// one endpoint at a time through the rate limiter and merged.
func (r *FalRepositoryImpl) GetUsage(ctx context.Context, query entity.UsageQuery) (*entity.UsageResponse, error) {
	if len(query.EndpointIDs) == 0 {
		return nil, types.ErrNoEndpoints
	}
	if len(query.EndpointIDs) > maxEndpointIDs {
		return nil, types.ErrTooManyEndpoints
	}
	if query.End.Before(query.Start) {
		return nil, types.ErrInvertedDateRange
	}

	if len(query.EndpointIDs) < batchThreshold {
		return r.fetchUsagePages(ctx, usageParams(query, query.EndpointIDs))
	}

	merged := &entity.UsageResponse{}
	for _, endpointID := range query.EndpointIDs {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := r.fetchUsagePages(ctx, usageParams(query, []string{endpointID}))
		if err != nil {
			return nil, fmt.Errorf("fetching usage for %s: %w", endpointID, err)
		}
		merged.TimeSeries = append(merged.TimeSeries, resp.TimeSeries...)
		merged.Summary = append(merged.Summary, resp.Summary...)
		if resp.Meta != nil {
			merged.Meta = resp.Meta
		}
	}
	return merged, nil
}

// GetPricing fetches the unit-price table. The pricing payload varies in
// shape, so both the list key and the per-item field names are probed.
func (r *FalRepositoryImpl) GetPricing(ctx context.Context, endpointIDs []string) (entity.PricingMap, error) {
	params := url.Values{}
	if len(endpointIDs) > 0 {
		params.Set("endpoint_id", strings.Join(endpointIDs, ","))
	}

	body, err := r.doGet(ctx, pricingEndpoint, params)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding pricing response: %w", err)
	}

	var items []struct {
		EndpointID string   `json:"endpoint_id"`
		Model      string   `json:"model"`
		UnitPrice  *float64 `json:"unit_price"`
		Price      *float64 `json:"price"`
	}
	for _, key := range []string{"items", "data", "prices"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err == nil && items != nil {
			break
		}
	}

	pricing := make(entity.PricingMap, len(items))
	for _, item := range items {
		id := item.EndpointID
		if id == "" {
			id = item.Model
		}
		if id == "" {
			continue
		}
		switch {
		case item.UnitPrice != nil:
			pricing[id] = *item.UnitPrice
		case item.Price != nil:
			pricing[id] = *item.Price
		}
	}
	return pricing, nil
}
