package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/service"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/dateutil"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

// defaultDatabaseAlias is the state-file key for the catch-all usage
// database, used when a key alias has no mapping of its own.
const defaultDatabaseAlias = "fal_ai"

// UsageUseCase drives the usage command: fetch, aggregate, display, and
// optionally export or persist to Notion. The fal.ai and Notion clients are
// built per run because their credentials come from the resolved config.
type UsageUseCase struct {
	configRepo repository.ConfigRepository
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface

	newFalRepo    func(apiKey string) repository.FalRepository
	newRecordRepo func(apiKey string) repository.RecordStore
}

// NewUsageUseCase creates a usage use case.
func NewUsageUseCase(
	configRepo repository.ConfigRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	newFalRepo func(apiKey string) repository.FalRepository,
	newRecordRepo func(apiKey string) repository.RecordStore,
) *UsageUseCase {
	return &UsageUseCase{
		configRepo:    configRepo,
		exportRepo:    exportRepo,
		console:       console,
		newFalRepo:    newFalRepo,
		newRecordRepo: newRecordRepo,
	}
}

// resolveConfig merges the state file, an optional override file, and the
// CLI flags into the effective configuration for this run.
func (uc *UsageUseCase) resolveConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg, err := uc.configRepo.Load()
	if err != nil {
		return nil, err
	}

	if args.ConfigFile != "" {
		override, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Merge(override)
	}

	if args.APIKey != "" {
		cfg.FalAPIKey = args.APIKey
	}
	if args.NotionAPIKey != "" {
		cfg.NotionAPIKey = args.NotionAPIKey
	}
	if args.Timezone != "" {
		cfg.Timezone = args.Timezone
	}
	return cfg, nil
}

// resolveModels picks the endpoint list for this run. A list passed on the
// command line becomes the new persisted default.
func (uc *UsageUseCase) resolveModels(args *types.CLIArgs, cfg *types.Config) ([]string, error) {
	if len(args.Models) > 0 {
		cfg.Models = args.Models
		if err := uc.configRepo.Save(cfg); err != nil {
			uc.console.LogWarning("Could not persist model list: %v", err)
		}
		return args.Models, nil
	}
	if len(cfg.Models) > 0 {
		return cfg.Models, nil
	}
	return nil, types.ErrNoModels
}

// Run executes the usage command.
func (uc *UsageUseCase) Run(ctx context.Context, args *types.CLIArgs) error {
	cfg, err := uc.resolveConfig(args)
	if err != nil {
		return err
	}
	if cfg.FalAPIKey == "" {
		return types.ErrNoAPIKey
	}
	if args.Verbose {
		uc.console.LogInfo("Using fal.ai key %s", types.MaskKey(cfg.FalAPIKey))
	}

	models, err := uc.resolveModels(args, cfg)
	if err != nil {
		return err
	}

	preset := args.Preset
	if preset == "" && args.StartDate == "" {
		preset = cfg.DefaultPreset
	}
	start, end, err := dateutil.ResolveRange(preset, args.StartDate, args.EndDate, cfg.Timezone)
	if err != nil {
		return err
	}

	// Notion needs the per-bucket detail; plain display only the summary.
	expand := []string{"summary", "auth_method"}
	if args.Notion {
		expand = []string{"time_series", "auth_method"}
	}

	query := entity.UsageQuery{
		EndpointIDs:      models,
		Start:            start,
		End:              end,
		Timeframe:        entity.Granularity(args.Timeframe),
		Timezone:         cfg.Timezone,
		BoundToTimeframe: args.BoundToTimeframe,
		Expand:           expand,
	}

	falRepo := uc.newFalRepo(cfg.FalAPIKey)

	status := uc.console.Status(fmt.Sprintf("Fetching usage for %d model(s)...", len(models)))
	pricing, err := falRepo.GetPricing(ctx, models)
	if err != nil {
		uc.console.LogWarning("Pricing lookup failed, falling back to response data: %v", err)
		pricing = nil
	}
	resp, err := falRepo.GetUsage(ctx, query)
	status.Stop()
	if err != nil {
		return fmt.Errorf("fetching usage: %w", err)
	}

	entries := service.Normalize(resp, pricing)
	ledger := entity.NewAggregateLedger()
	service.Accumulate(ledger, entries)

	report := entity.UsageReport{
		EndpointIDs: models,
		PeriodStart: start,
		PeriodEnd:   end,
		Timezone:    cfg.Timezone,
		Timeframe:   query.Timeframe,
		Ledger:      ledger,
	}

	uc.displayReport(report)

	if len(args.ReportType) > 0 {
		uc.exportReport(report, args)
	}

	if args.Notion {
		return uc.saveToNotion(ctx, args, cfg, entries, start, end)
	}
	return nil
}

// displayReport renders the aggregated ledger as console tables.
func (uc *UsageUseCase) displayReport(report entity.UsageReport) {
	ledger := report.Ledger

	uc.console.Println()
	uc.console.LogInfo("Usage %s to %s (%s)",
		report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"), report.Timezone)

	if len(ledger.ByModel) == 0 {
		uc.console.LogWarning("No usage data for the selected period.")
		return
	}

	models := make([]string, 0, len(ledger.ByModel))
	for model := range ledger.ByModel {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool {
		ci, cj := ledger.ByModel[models[i]].Cost, ledger.ByModel[models[j]].Cost
		if ci != cj {
			return ci > cj
		}
		return models[i] < models[j]
	})

	table := uc.console.CreateTable()
	table.AddColumn("Model")
	table.AddColumn("Requests")
	table.AddColumn("Quantity")
	table.AddColumn("Unit Price ($)")
	table.AddColumn("Cost ($)")
	for _, model := range models {
		stats := ledger.ByModel[model]
		table.AddRow(model,
			fmt.Sprintf("%.0f", stats.Requests),
			fmt.Sprintf("%.0f", stats.Quantity),
			fmt.Sprintf("%.6f", stats.UnitPrice),
			fmt.Sprintf("%.4f", stats.Cost))
	}
	table.AddRow("TOTAL",
		fmt.Sprintf("%.0f", ledger.Total.Requests),
		fmt.Sprintf("%.0f", ledger.Total.Quantity),
		"",
		fmt.Sprintf("%.4f", ledger.Total.Cost))
	uc.console.Println(table.Render())

	if len(ledger.ByAuthMethod) > 0 {
		aliases := make([]string, 0, len(ledger.ByAuthMethod))
		for alias := range ledger.ByAuthMethod {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)

		keyTable := uc.console.CreateTable()
		keyTable.AddColumn("API Key")
		keyTable.AddColumn("Requests")
		keyTable.AddColumn("Quantity")
		keyTable.AddColumn("Cost ($)")
		for _, alias := range aliases {
			stats := ledger.ByAuthMethod[alias]
			keyTable.AddRow(alias,
				fmt.Sprintf("%.0f", stats.Requests),
				fmt.Sprintf("%.0f", stats.Quantity),
				fmt.Sprintf("%.4f", stats.Cost))
		}
		uc.console.Println(keyTable.Render())
	}
}

// exportReport writes the report in every requested format.
func (uc *UsageUseCase) exportReport(report entity.UsageReport, args *types.CLIArgs) {
	name := args.ReportName
	if name == "" {
		name = "usage"
	}

	for _, reportType := range args.ReportType {
		var path string
		var err error
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(report, name, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(report, name, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(report, name, args.Dir)
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Export to %s failed: %v", reportType, err)
			continue
		}
		uc.console.LogSuccess("Exported %s report to %s", reportType, path)
	}
}

// saveToNotion maps the normalized entries to per-key record batches and
// runs them through the upsert engine.
func (uc *UsageUseCase) saveToNotion(ctx context.Context, args *types.CLIArgs, cfg *types.Config, entries []entity.UsageEntry, start, end time.Time) error {
	if cfg.NotionAPIKey == "" {
		return types.ErrNoNotionAPIKey
	}

	granularity := entity.Granularity(args.Timeframe)
	if granularity == "" {
		granularity = service.InferGranularity(start, end)
	}

	byAlias := service.MapRecords(entries, granularity)
	if len(byAlias) == 0 {
		uc.console.LogWarning("No records to save.")
		return nil
	}

	fallbackDB := args.NotionDatabaseID
	if fallbackDB == "" {
		fallbackDB = cfg.DatabaseFor(defaultDatabaseAlias, "")
	}

	store := uc.newRecordRepo(cfg.NotionAPIKey)
	reconciler := service.NewReconciler(store, uc.console)

	aliases := make([]string, 0, len(byAlias))
	for alias := range byAlias {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	var total entity.UpsertStats
	for _, alias := range aliases {
		records := byAlias[alias]

		databaseID := cfg.DatabaseFor(alias, fallbackDB)
		if databaseID == "" {
			uc.console.LogWarning("No database mapped for key %q, skipping %d record(s)", alias, len(records))
			continue
		}

		if args.DryRun {
			uc.console.LogInfo("[dry-run] %q: would save %d record(s) to database %s", alias, len(records), databaseID)
			continue
		}

		if ok, err := store.DatabaseExists(ctx, databaseID); err != nil || !ok {
			uc.console.LogError("Database %s for key %q is not reachable: %v", databaseID, alias, err)
			continue
		}

		uc.console.LogInfo("Saving %d record(s) for key %q...", len(records), alias)
		stats := reconciler.SaveRecords(ctx, databaseID, records, args.UpdateExisting)
		total.Created += stats.Created
		total.Updated += stats.Updated
		total.Skipped += stats.Skipped
	}

	if !args.DryRun {
		uc.console.LogSuccess("Notion save complete: %d created, %d updated, %d skipped",
			total.Created, total.Updated, total.Skipped)
	}
	return nil
}
