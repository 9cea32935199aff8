package openai

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
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
)

const responsesEndpoint = "https://api.openai.com/v1/responses"

// DefaultModel is the extraction model used when the caller picks none.
const DefaultModel = "gpt-4o-mini"

// InvoiceRepositoryImpl extracts invoices from Gmail through the OpenAI
// Responses API with the Gmail MCP connector. The model searches the mailbox
// and returns structured invoice data as a JSON array.
type InvoiceRepositoryImpl struct {
	apiKey      string
	accessToken string // Google OAuth access token for the Gmail connector
	model       string
	client      *http.Client
}

// NewInvoiceRepository creates an invoice source. Extraction runs can take a
// while, the model reads mail bodies, so the client timeout is generous.
func NewInvoiceRepository(apiKey, googleAccessToken, model string) repository.InvoiceSource {
	if model == "" {
		model = DefaultModel
	}
	return &InvoiceRepositoryImpl{
		apiKey:      apiKey,
		accessToken: googleAccessToken,
		model:       model,
		client:      &http.Client{Timeout: 5 * time.Minute},
	}
}

// extractionPrompt builds the Gmail search and extraction instructions for
// one keyword. Dates arrive as YYYY-MM-DD and are rewritten into Gmail's
// YYYY/MM/DD operator format.
func extractionPrompt(keyword, startDate, endDate string) string {
	gmailStart := strings.ReplaceAll(startDate, "-", "/")
	gmailEnd := strings.ReplaceAll(endDate, "-", "/")

	return strings.TrimSpace(fmt.Sprintf(`
Search Gmail for emails matching: "%s"

Date range: after:%s before:%s

For each invoice email found, extract the following information and return as a JSON array:

[
  {
    "invoice_id": "string (invoice number - extract from invoice body, NOT receipt number)",
    "date": "YYYY-MM-DD (date paid from invoice, if not found use email date)",
    "amount": number (total amount in USD, numeric only without $ symbol)",
    "description": "string (brief description of charges/services)",
    "period": "string (billing period if mentioned, e.g., 'Jan 1-31, 2024' or 'N/A')",
    "service": "string (service/company name, e.g., 'Replit', 'AWS', etc.)",
    "email_subject": "string (original email subject line)",
    "paid_status": "string (payment status: 'Paid', 'Unpaid', 'Pending', 'Overdue', etc.)"
  }
]

Important extraction rules:
1. Return ONLY valid JSON array, no markdown code blocks
2. If no invoice emails found, return empty array: []
3. "invoice_id" MUST be the invoice number (not receipt number) - look for "Invoice Number:", "Invoice #:", etc. in email body
4. If invoice number is not found, use pattern: "INV-YYYY-MM-DD" based on invoice date
5. "amount" must be a number (not string), extract numeric value only
6. "date" must be in YYYY-MM-DD format - use invoice date paid if available, otherwise use email sent date
7. "period" should capture billing period if mentioned in email, otherwise use "N/A"
8. "service" should identify the service provider from email sender or content (e.g., "Replit", "AWS", "Google Cloud")
   - Use simple company/service names without special punctuation
   - If company name contains commas (e.g., "Anthropic, PBC"), use without comma (e.g., "Anthropic PBC" or "Anthropic")
9. "paid_status" should determine payment status - if it's a receipt/confirmation email, use "Paid"; if it mentions "pending" or "due", use "Unpaid" or "Pending"
10. Extract data accurately from email body, subject, and metadata
11. Focus on invoice/receipt/billing emails only, ignore other types

Return the JSON array now.`, keyword, gmailStart, gmailEnd))
}

// stripCodeFences removes a markdown code block wrapper the model sometimes
// adds despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// responsePayload is the slice of the Responses API answer this adapter
// reads: the concatenated output text of all message items.
type responsePayload struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p responsePayload) outputText() string {
	var sb strings.Builder
	for _, item := range p.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				sb.WriteString(content.Text)
			}
		}
	}
	return sb.String()
}

// FetchInvoices runs one keyword pass: the model searches Gmail between
// startDate and endDate (YYYY-MM-DD) and returns the raw extraction results.
// Validation happens downstream; this adapter only guarantees a JSON array.
func (r *InvoiceRepositoryImpl) FetchInvoices(ctx context.Context, keyword, startDate, endDate string) ([]entity.RawInvoice, error) {
	request := map[string]any{
		"model": r.model,
		"tools": []map[string]any{
			{
				"type":             "mcp",
				"server_label":     "google_gmail",
				"connector_id":     "connector_gmail",
				"authorization":    r.accessToken,
				"require_approval": "never",
			},
		},
		"input": extractionPrompt(keyword, startDate, endDate),
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responsesEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling responses API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload responsePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding responses API answer: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if payload.Error != nil {
			return nil, fmt.Errorf("responses API: %d - %s", resp.StatusCode, payload.Error.Message)
		}
		return nil, fmt.Errorf("responses API: %d", resp.StatusCode)
	}

	text := stripCodeFences(payload.outputText())

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var invoices []entity.RawInvoice
	if err := decoder.Decode(&invoices); err != nil {
		return nil, fmt.Errorf("extraction output is not a JSON array: %w", err)
	}
	return invoices, nil
}
