package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

func TestValidateInvoiceRejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     entity.RawInvoice
		wantErr string
	}{
		{
			name:    "missing amount",
			raw:     entity.RawInvoice{"invoice_id": "INV-1", "date": "2024-03-05", "service": "fal.ai"},
			wantErr: "missing required field: amount",
		},
		{
			name:    "missing invoice id",
			raw:     entity.RawInvoice{"date": "2024-03-05", "amount": 5.0, "service": "fal.ai"},
			wantErr: "missing required field: invoice_id",
		},
		{
			name:    "wrong date format",
			raw:     entity.RawInvoice{"invoice_id": "INV-1", "date": "03-05-2024", "amount": 5.0, "service": "fal.ai"},
			wantErr: "invalid date",
		},
		{
			name:    "negative amount",
			raw:     entity.RawInvoice{"invoice_id": "INV-1", "date": "2024-03-05", "amount": -5.0, "service": "fal.ai"},
			wantErr: "negative amount",
		},
		{
			name:    "unparseable amount",
			raw:     entity.RawInvoice{"invoice_id": "INV-1", "date": "2024-03-05", "amount": "five", "service": "fal.ai"},
			wantErr: "invalid amount",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateInvoice(tc.raw)
			if err == nil {
				t.Fatalf("expected rejection, got none")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateInvoiceDefaults(t *testing.T) {
	inv, err := ValidateInvoice(entity.RawInvoice{
		"invoice_id": "INV-42",
		"date":       "2024-03-05",
		"amount":     json.Number("12.50"),
		"service":    "fal.ai",
	})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if inv.Amount != 12.5 {
		t.Errorf("Amount = %v, want 12.5", inv.Amount)
	}
	if inv.Description != "N/A" || inv.Period != "N/A" || inv.EmailSubject != "N/A" {
		t.Errorf("optional text fields should default to N/A, got %+v", inv)
	}
	if inv.PaidStatus != "Paid" {
		t.Errorf("PaidStatus = %q, want Paid", inv.PaidStatus)
	}
}

func TestValidateInvoiceAmountShapes(t *testing.T) {
	tests := []struct {
		name   string
		amount any
		want   float64
	}{
		{"float", 3.5, 3.5},
		{"integer", 4, 4},
		{"string", "7.25", 7.25},
		{"dollar string", "$19.99", 19.99},
		{"zero", 0.0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := ValidateInvoice(entity.RawInvoice{
				"invoice_id": "INV-1",
				"date":       "2024-03-05",
				"amount":     tc.amount,
				"service":    "fal.ai",
			})
			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
			if inv.Amount != tc.want {
				t.Errorf("Amount = %v, want %v", inv.Amount, tc.want)
			}
		})
	}
}

func TestValidateInvoiceServiceCommaRewrite(t *testing.T) {
	inv, err := ValidateInvoice(entity.RawInvoice{
		"invoice_id": "INV-1",
		"date":       "2024-03-05",
		"amount":     1.0,
		"service":    "fal.ai, compute",
	})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if inv.Service != "fal.ai - compute" {
		t.Errorf("Service = %q, want commas rewritten", inv.Service)
	}
}

func TestInvoiceSetDedupesAcrossPasses(t *testing.T) {
	set := NewInvoiceSet()

	first := entity.Invoice{InvoiceID: "INV-1", Service: "fal.ai", Amount: 1}
	if !set.Add(first) {
		t.Fatalf("first occurrence should be kept")
	}

	// A second pass surfaces the same invoice under a different keyword.
	dup := entity.Invoice{InvoiceID: "INV-1", Service: "fal", Amount: 2}
	if set.Add(dup) {
		t.Errorf("duplicate invoice number should be discarded")
	}
	if set.Add(entity.Invoice{InvoiceID: "INV-2"}) != true {
		t.Errorf("a new invoice number should be kept")
	}

	got := set.Invoices()
	if len(got) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(got))
	}
	if got[0].Service != "fal.ai" {
		t.Errorf("first occurrence must win, got service %q", got[0].Service)
	}
}
