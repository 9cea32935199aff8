package entity

// Invoice is a validated invoice record extracted from Gmail. InvoiceID is
// the dedup key across keyword passes.
type Invoice struct {
	InvoiceID    string  `json:"invoice_id"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Period       string  `json:"period"`
	Service      string  `json:"service"`
	EmailSubject string  `json:"email_subject"`
	PaidStatus   string  `json:"paid_status"`
}

// RawInvoice is a loosely-typed invoice as returned by the extraction model,
// before validation.
type RawInvoice map[string]any
