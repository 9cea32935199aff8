package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// stringField renders a raw value as a trimmed string, or def when absent.
func stringField(raw entity.RawInvoice, key, def string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// coerceAmount accepts the numeric shapes an extraction model produces:
// JSON numbers, integers, and numeric strings (with an optional leading $).
func coerceAmount(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "$"))
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// ValidateInvoice checks one loosely-typed extraction result and returns the
// normalized invoice, or the reason it was rejected. Rejection is per-record;
// callers drop the record and keep the batch going.
func ValidateInvoice(raw entity.RawInvoice) (entity.Invoice, error) {
	for _, field := range []string{"invoice_id", "date", "amount", "service"} {
		if v, ok := raw[field]; !ok || v == nil {
			return entity.Invoice{}, fmt.Errorf("missing required field: %s", field)
		}
	}

	date := stringField(raw, "date", "")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return entity.Invoice{}, fmt.Errorf("invalid date %q (YYYY-MM-DD required)", date)
	}

	amount, err := coerceAmount(raw["amount"])
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("invalid amount %v", raw["amount"])
	}
	if amount < 0 {
		return entity.Invoice{}, fmt.Errorf("negative amount: %v", amount)
	}

	// Commas would split the value into multiple Notion select options, so
	// the service name stays a single tag.
	service := strings.ReplaceAll(stringField(raw, "service", ""), ",", " -")

	return entity.Invoice{
		InvoiceID:    stringField(raw, "invoice_id", ""),
		Date:         date,
		Amount:       amount,
		Description:  stringField(raw, "description", "N/A"),
		Period:       stringField(raw, "period", "N/A"),
		Service:      service,
		EmailSubject: stringField(raw, "email_subject", "N/A"),
		PaidStatus:   stringField(raw, "paid_status", "Paid"),
	}, nil
}

// InvoiceSet merges invoices across keyword passes, deduplicating by invoice
// number. The first occurrence wins; later duplicates are discarded.
type InvoiceSet struct {
	seen     map[string]bool
	invoices []entity.Invoice
}

// NewInvoiceSet creates an empty set.
func NewInvoiceSet() *InvoiceSet {
	return &InvoiceSet{seen: make(map[string]bool)}
}

// Add inserts an invoice unless its ID was already seen. Reports whether the
// invoice was kept.
func (s *InvoiceSet) Add(inv entity.Invoice) bool {
	if s.seen[inv.InvoiceID] {
		return false
	}
	s.seen[inv.InvoiceID] = true
	s.invoices = append(s.invoices, inv)
	return true
}

// Invoices returns the merged invoices in insertion order.
func (s *InvoiceSet) Invoices() []entity.Invoice {
	return s.invoices
}
