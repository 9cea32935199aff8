package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

const (
	apiBaseURL    = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// FormatDatabaseID normalizes a database ID copied from a Notion URL into
// the hyphenated 8-4-4-4-12 form the API expects. IDs that already carry
// hyphens or are not 32 hex characters pass through unchanged.
func FormatDatabaseID(databaseID string) string {
	databaseID = strings.TrimSpace(databaseID)
	if strings.Contains(databaseID, "-") {
		return databaseID
	}
	if len(databaseID) != 32 {
		return databaseID
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		databaseID[:8], databaseID[8:12], databaseID[12:16], databaseID[16:20], databaseID[20:])
}

// NotionRepositoryImpl implements RecordStore and InvoiceStore over the
// Notion HTTP API.
type NotionRepositoryImpl struct {
	apiKey string
	client *http.Client
}

// NewNotionRepository creates a Notion API client.
func NewNotionRepository(apiKey string) *NotionRepositoryImpl {
	return &NotionRepositoryImpl{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *NotionRepositoryImpl) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("notion API %s %s: %d - %s", method, path, resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("notion API %s %s: %d", method, path, resp.StatusCode)
	}
	return data, nil
}

// DatabaseExists reports whether the database can be retrieved with the
// current integration token.
func (r *NotionRepositoryImpl) DatabaseExists(ctx context.Context, databaseID string) (bool, error) {
	_, err := r.do(ctx, http.MethodGet, "/databases/"+FormatDatabaseID(databaseID), nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

// property is the generic decode target for a page property. Only the
// variants this integration reads are declared.
type property struct {
	Type     string     `json:"type"`
	Title    []richText `json:"title"`
	RichText []richText `json:"rich_text"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select"`
	Number *float64 `json:"number"`
}

type richText struct {
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

// textValue extracts the plain text of a title, rich_text, or select
// property regardless of which of the three it is.
func (p property) textValue() string {
	switch p.Type {
	case "title":
		if len(p.Title) > 0 {
			return p.Title[0].PlainText
		}
	case "rich_text":
		if len(p.RichText) > 0 {
			return p.RichText[0].PlainText
		}
	case "select":
		if p.Select != nil {
			return p.Select.Name
		}
	}
	return ""
}

type queryResult struct {
	Results []struct {
		ID         string              `json:"id"`
		Properties map[string]property `json:"properties"`
	} `json:"results"`
}

// QueryByDate returns the pages whose Date property equals date, in the
// order the API returns them.
func (r *NotionRepositoryImpl) QueryByDate(ctx context.Context, databaseID, date string) ([]entity.StoredPage, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"property": "Date",
			"date":     map[string]any{"equals": date},
		},
	}

	body, err := r.do(ctx, http.MethodPost, "/databases/"+FormatDatabaseID(databaseID)+"/query", payload)
	if err != nil {
		return nil, err
	}

	var result queryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	pages := make([]entity.StoredPage, 0, len(result.Results))
	for _, page := range result.Results {
		props := page.Properties

		var cost *float64
		if costProp, ok := props["Cost ($)"]; ok && costProp.Type == "number" {
			cost = costProp.Number
		}

		pages = append(pages, entity.StoredPage{
			ID:         page.ID,
			Model:      props["Model"].textValue(),
			AuthMethod: props["Key Name"].textValue(),
			Time:       props["Time"].textValue(),
			Cost:       cost,
		})
	}
	return pages, nil
}

func titleProp(content string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": content}},
		},
	}
}

func richTextProp(content string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": content}},
		},
	}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func numberProp(n float64) map[string]any {
	return map[string]any{"number": n}
}

func dateProp(date string) map[string]any {
	return map[string]any{"date": map[string]any{"start": date}}
}

// CreatePage creates a usage page. Model doubles as the page title and a
// select option so the database can group by model; new select options are
// created by the API on demand.
func (r *NotionRepositoryImpl) CreatePage(ctx context.Context, databaseID string, rec entity.UsageRecord) (string, error) {
	properties := map[string]any{
		"Date":           dateProp(rec.Date),
		"Model":          titleProp(rec.Model),
		"Model List":     selectProp(rec.Model),
		"Requests":       numberProp(rec.Requests),
		"Quantity":       numberProp(rec.Quantity),
		"Cost ($)":       numberProp(rec.Cost),
		"Unit Price ($)": numberProp(rec.UnitPrice),
	}
	if rec.AuthMethod != "" {
		properties["Key Name"] = selectProp(rec.AuthMethod)
	}
	if rec.Time != "" {
		properties["Time"] = richTextProp(rec.Time)
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": FormatDatabaseID(databaseID)},
		"properties": properties,
	}

	body, err := r.do(ctx, http.MethodPost, "/pages", payload)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	return created.ID, nil
}

// UpdatePage updates an existing page. With timeOnly set, only the Time
// property is written.
func (r *NotionRepositoryImpl) UpdatePage(ctx context.Context, pageID string, rec entity.UsageRecord, timeOnly bool) error {
	var properties map[string]any
	if timeOnly {
		if rec.Time == "" {
			return fmt.Errorf("time-only update without a time value")
		}
		properties = map[string]any{"Time": richTextProp(rec.Time)}
	} else {
		properties = map[string]any{
			"Requests":       numberProp(rec.Requests),
			"Quantity":       numberProp(rec.Quantity),
			"Cost ($)":       numberProp(rec.Cost),
			"Unit Price ($)": numberProp(rec.UnitPrice),
		}
		if rec.Time != "" {
			properties["Time"] = richTextProp(rec.Time)
		}
	}

	_, err := r.do(ctx, http.MethodPatch, "/pages/"+pageID, map[string]any{"properties": properties})
	return err
}

// FindInvoice looks up an invoice page by its Invoice Number title. An empty
// page ID means the invoice is not stored yet.
func (r *NotionRepositoryImpl) FindInvoice(ctx context.Context, databaseID, invoiceID string) (string, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"property": "Invoice Number",
			"title":    map[string]any{"equals": invoiceID},
		},
	}

	body, err := r.do(ctx, http.MethodPost, "/databases/"+FormatDatabaseID(databaseID)+"/query", payload)
	if err != nil {
		return "", err
	}

	var result queryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding query response: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

// CreateInvoice creates an invoice page.
func (r *NotionRepositoryImpl) CreateInvoice(ctx context.Context, databaseID string, inv entity.Invoice) (string, error) {
	properties := map[string]any{
		"Invoice Number": titleProp(inv.InvoiceID),
		"Date Paid":      dateProp(inv.Date),
		"Amount ($)":     numberProp(inv.Amount),
		"Service":        selectProp(inv.Service),
		"Description":    richTextProp(inv.Description),
		"Period":         richTextProp(inv.Period),
		"Email Subject":  richTextProp(inv.EmailSubject),
		"Paid Status": map[string]any{
			"status": map[string]any{"name": inv.PaidStatus},
		},
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": FormatDatabaseID(databaseID)},
		"properties": properties,
	}

	body, err := r.do(ctx, http.MethodPost, "/pages", payload)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	return created.ID, nil
}
