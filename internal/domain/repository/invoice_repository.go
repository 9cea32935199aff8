package repository

import (
	"context"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// InvoiceSource extracts loosely-typed invoice records from a mailbox for a
// single search keyword. Each keyword pass is independent; callers merge and
// deduplicate across passes.
type InvoiceSource interface {
	FetchInvoices(ctx context.Context, keyword, startDate, endDate string) ([]entity.RawInvoice, error)
}
