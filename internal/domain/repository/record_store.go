package repository

import (
	"context"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// RecordStore is the Notion-shaped record store the upsert engine writes to.
// The store offers no native upsert and no compound unique constraint, so
// duplicate detection is QueryByDate plus client-side scanning.
type RecordStore interface {
	// DatabaseExists reports whether the database can be retrieved.
	DatabaseExists(ctx context.Context, databaseID string) (bool, error)

	// QueryByDate returns the pages whose Date property equals date
	// (YYYY-MM-DD), preserving the store-defined order.
	QueryByDate(ctx context.Context, databaseID, date string) ([]entity.StoredPage, error)

	// CreatePage creates a page for the record and returns its ID.
	CreatePage(ctx context.Context, databaseID string, rec entity.UsageRecord) (string, error)

	// UpdatePage updates an existing page. With timeOnly set, only the Time
	// property is written and the usage numbers are left untouched.
	UpdatePage(ctx context.Context, pageID string, rec entity.UsageRecord, timeOnly bool) error
}

// InvoiceStore persists validated invoices, deduplicated by invoice number.
type InvoiceStore interface {
	FindInvoice(ctx context.Context, databaseID, invoiceID string) (pageID string, err error)
	CreateInvoice(ctx context.Context, databaseID string, inv entity.Invoice) (string, error)
}
