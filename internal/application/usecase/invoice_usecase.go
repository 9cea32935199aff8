package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/service"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

// defaultLookbackDays is how far back the mailbox is searched when no range
// is given.
const defaultLookbackDays = 90

// InvoiceUseCase drives the invoices command: extract invoices from Gmail
// keyword by keyword, validate and deduplicate them, and optionally persist
// them to Notion.
type InvoiceUseCase struct {
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface

	newSource func(openAIKey, googleToken, model string) repository.InvoiceSource
	newStore  func(notionKey string) repository.InvoiceStore
}

// NewInvoiceUseCase creates an invoice use case.
func NewInvoiceUseCase(
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
	newSource func(openAIKey, googleToken, model string) repository.InvoiceSource,
	newStore func(notionKey string) repository.InvoiceStore,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		configRepo: configRepo,
		console:    console,
		newSource:  newSource,
		newStore:   newStore,
	}
}

// resolveDates fills the search window: an explicit range wins, otherwise
// the last Days (default 90) ending today.
func resolveDates(args *types.InvoiceArgs) (string, string) {
	end := args.EndDate
	if end == "" {
		end = time.Now().Format("2006-01-02")
	}
	start := args.StartDate
	if start == "" {
		days := args.Days
		if days <= 0 {
			days = defaultLookbackDays
		}
		endDate, err := time.Parse("2006-01-02", end)
		if err != nil {
			endDate = time.Now()
		}
		start = endDate.AddDate(0, 0, -days).Format("2006-01-02")
	}
	return start, end
}

// Run executes the invoices command.
func (uc *InvoiceUseCase) Run(ctx context.Context, args *types.InvoiceArgs) error {
	cfg, err := uc.configRepo.Load()
	if err != nil {
		return err
	}

	if args.OpenAIAPIKey != "" {
		cfg.OpenAIAPIKey = args.OpenAIAPIKey
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("no OpenAI API key configured. Set OPENAI_API_KEY or use --openai-api-key")
	}
	if cfg.GoogleAccessToken == "" {
		return fmt.Errorf("no Google access token configured. Set GOOGLE_ACCESS_TOKEN")
	}
	if args.Verbose {
		uc.console.LogInfo("Using OpenAI key %s", types.MaskKey(cfg.OpenAIAPIKey))
	}

	keywords := args.Keywords
	if len(keywords) == 0 {
		keywords = cfg.InvoiceKeywords
	}
	if len(keywords) == 0 {
		return types.ErrNoKeywords
	}

	startDate, endDate := resolveDates(args)
	uc.console.LogInfo("Searching invoices from %s to %s (%d keyword(s))", startDate, endDate, len(keywords))

	source := uc.newSource(cfg.OpenAIAPIKey, cfg.GoogleAccessToken, args.Model)
	set := service.NewInvoiceSet()

	// One keyword failing must not abort the others.
	for i, keyword := range keywords {
		status := uc.console.Status(fmt.Sprintf("Keyword %d/%d: %q", i+1, len(keywords), keyword))
		rawInvoices, err := source.FetchInvoices(ctx, keyword, startDate, endDate)
		status.Stop()
		if err != nil {
			uc.console.LogError("Search for %q failed: %v", keyword, err)
			continue
		}

		kept := 0
		for _, raw := range rawInvoices {
			inv, err := service.ValidateInvoice(raw)
			if err != nil {
				uc.console.LogWarning("Invoice rejected: %v", err)
				continue
			}
			if set.Add(inv) {
				kept++
			} else if args.Verbose {
				uc.console.LogInfo("Duplicate invoice skipped: %s", inv.InvoiceID)
			}
		}
		uc.console.LogInfo("%q: %d invoice(s) found, %d new", keyword, len(rawInvoices), kept)
	}

	invoices := set.Invoices()
	if len(invoices) == 0 {
		uc.console.LogWarning("No valid invoices found.")
		return nil
	}

	uc.displayInvoices(invoices)

	if !args.Notion {
		return nil
	}
	return uc.saveInvoices(ctx, args, cfg, invoices)
}

// displayInvoices renders the extracted invoices as a console table.
func (uc *InvoiceUseCase) displayInvoices(invoices []entity.Invoice) {
	table := uc.console.CreateTable()
	table.AddColumn("Invoice Number")
	table.AddColumn("Date Paid")
	table.AddColumn("Amount ($)")
	table.AddColumn("Service")
	table.AddColumn("Status")

	var total float64
	for _, inv := range invoices {
		table.AddRow(inv.InvoiceID, inv.Date, fmt.Sprintf("%.2f", inv.Amount), inv.Service, inv.PaidStatus)
		total += inv.Amount
	}
	table.AddRow("TOTAL", "", fmt.Sprintf("%.2f", total), "", "")
	uc.console.Println(table.Render())
}

// saveInvoices persists the invoices, skipping any whose number is already
// stored.
func (uc *InvoiceUseCase) saveInvoices(ctx context.Context, args *types.InvoiceArgs, cfg *types.Config, invoices []entity.Invoice) error {
	if cfg.NotionAPIKey == "" {
		return types.ErrNoNotionAPIKey
	}
	databaseID := args.DatabaseID
	if databaseID == "" {
		databaseID = cfg.InvoiceDatabaseID
	}
	if databaseID == "" {
		return types.ErrNoDatabaseID
	}

	if args.DryRun {
		uc.console.LogInfo("[dry-run] would save %d invoice(s) to database %s", len(invoices), databaseID)
		return nil
	}

	store := uc.newStore(cfg.NotionAPIKey)

	var stats entity.UpsertStats
	progress := uc.console.ProgressWithTotal("Saving invoices", len(invoices))
	for _, inv := range invoices {
		pageID, err := store.FindInvoice(ctx, databaseID, inv.InvoiceID)
		if err != nil {
			uc.console.LogWarning("Lookup for %s failed: %v", inv.InvoiceID, err)
			stats.Skipped++
			progress.Increment()
			continue
		}
		if pageID != "" {
			uc.console.LogInfo("Duplicate invoice skipped: %s", inv.InvoiceID)
			stats.Skipped++
			progress.Increment()
			continue
		}
		if _, err := store.CreateInvoice(ctx, databaseID, inv); err != nil {
			uc.console.LogWarning("Create for %s failed: %v", inv.InvoiceID, err)
			stats.Skipped++
			progress.Increment()
			continue
		}
		stats.Created++
		progress.Increment()
	}
	progress.Stop()

	uc.console.LogSuccess("Invoice save complete: %d created, %d skipped", stats.Created, stats.Skipped)
	return nil
}
