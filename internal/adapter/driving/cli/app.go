package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/application/usecase"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
	"github.com/goodjin723/AI-API-Usage-CLI/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd        *cobra.Command
	usageUseCase   *usecase.UsageUseCase
	invoiceUseCase *usecase.InvoiceUseCase
	version        string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "ai-usage",
		Short:   "fal.ai usage and cost tracking CLI",
		Version: formattedVersion,
		RunE:    app.runUsageCommand,
	}
	rootCmd.SetVersionTemplate(`{{printf "AI API Usage CLI version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Print detailed progress information")

	rootCmd.Flags().StringP("api-key", "k", "", "fal.ai admin API key (overrides config and FAL_ADMIN_API_KEY)")
	rootCmd.Flags().StringSliceP("models", "m", nil, "Endpoint IDs to query, comma-separated (persisted as the new default)")
	rootCmd.Flags().StringP("preset", "p", "", "Date range preset: today, yesterday, last-7-days, last-30-days, this-month")
	rootCmd.Flags().StringP("start", "s", "", "Start date (YYYY-MM-DD or ISO8601)")
	rootCmd.Flags().StringP("end", "e", "", "End date (YYYY-MM-DD or ISO8601, default: now)")
	rootCmd.Flags().StringP("timeframe", "t", "", "Aggregation unit: minute, hour, day, week, month (default: inferred)")
	rootCmd.Flags().StringP("timezone", "z", "", "Timezone for date boundaries (default: from config)")
	rootCmd.Flags().Bool("bound-to-timeframe", true, "Align the range to timeframe boundaries")
	rootCmd.Flags().Bool("notion", false, "Save per-bucket records to Notion")
	rootCmd.Flags().String("notion-database-id", "", "Notion database ID (overrides the per-key mapping)")
	rootCmd.Flags().String("notion-api-key", "", "Notion API key (overrides config and NOTION_API_KEY)")
	rootCmd.Flags().Bool("update-existing", false, "Update duplicate records instead of skipping them")
	rootCmd.Flags().Bool("dry-run", false, "Show what would be saved without writing to Notion")
	rootCmd.Flags().StringP("report-name", "n", "", "Base name for exported report files (without extension)")
	rootCmd.Flags().StringSliceP("report-type", "y", nil, "Export report types: csv, json, pdf")
	rootCmd.Flags().StringP("dir", "d", "", "Directory for exported reports (default: current directory)")

	rootCmd.AddCommand(app.newInvoicesCommand())

	app.rootCmd = rootCmd
	return app
}

// newInvoicesCommand builds the Gmail invoice extraction subcommand.
func (app *CLIApp) newInvoicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Extract invoices from Gmail and save them to Notion",
		RunE:  app.runInvoicesCommand,
	}

	cmd.Flags().StringSliceP("keywords", "q", nil, "Gmail search keywords, comma-separated (default: from config)")
	cmd.Flags().StringP("start", "s", "", "Search start date (YYYY-MM-DD)")
	cmd.Flags().StringP("end", "e", "", "Search end date (YYYY-MM-DD, default: today)")
	cmd.Flags().Int("days", 0, "Search the last N days when no start date is given (default: 90)")
	cmd.Flags().String("model", "", "OpenAI extraction model (default: gpt-4o-mini)")
	cmd.Flags().String("openai-api-key", "", "OpenAI API key (overrides config and OPENAI_API_KEY)")
	cmd.Flags().Bool("notion", false, "Save extracted invoices to Notion")
	cmd.Flags().String("notion-database-id", "", "Notion invoice database ID")
	cmd.Flags().Bool("update-existing", false, "Update duplicate invoices instead of skipping them")
	cmd.Flags().Bool("dry-run", false, "Show what would be saved without writing to Notion")

	return cmd
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseUsageArgs reads the root command's flags into a CLIArgs struct.
func (app *CLIApp) parseUsageArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	configFile, _ := cmd.Flags().GetString("config-file")
	apiKey, _ := cmd.Flags().GetString("api-key")
	models, _ := cmd.Flags().GetStringSlice("models")
	preset, _ := cmd.Flags().GetString("preset")
	startDate, _ := cmd.Flags().GetString("start")
	endDate, _ := cmd.Flags().GetString("end")
	timeframe, _ := cmd.Flags().GetString("timeframe")
	timezone, _ := cmd.Flags().GetString("timezone")
	boundToTimeframe, _ := cmd.Flags().GetBool("bound-to-timeframe")
	notion, _ := cmd.Flags().GetBool("notion")
	notionDatabaseID, _ := cmd.Flags().GetString("notion-database-id")
	notionAPIKey, _ := cmd.Flags().GetString("notion-api-key")
	updateExisting, _ := cmd.Flags().GetBool("update-existing")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	reportName, _ := cmd.Flags().GetString("report-name")
	reportType, _ := cmd.Flags().GetStringSlice("report-type")
	dir, _ := cmd.Flags().GetString("dir")

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile:       configFile,
		APIKey:           apiKey,
		Models:           models,
		Preset:           preset,
		StartDate:        startDate,
		EndDate:          endDate,
		Timeframe:        timeframe,
		Timezone:         timezone,
		BoundToTimeframe: boundToTimeframe,
		Notion:           notion,
		NotionDatabaseID: notionDatabaseID,
		NotionAPIKey:     notionAPIKey,
		UpdateExisting:   updateExisting,
		DryRun:           dryRun,
		Verbose:          verbose,
		ReportName:       reportName,
		ReportType:       reportType,
		Dir:              dir,
	}, nil
}

// parseInvoiceArgs reads the invoices subcommand's flags.
func (app *CLIApp) parseInvoiceArgs(cmd *cobra.Command) (*types.InvoiceArgs, error) {
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	startDate, _ := cmd.Flags().GetString("start")
	endDate, _ := cmd.Flags().GetString("end")
	days, _ := cmd.Flags().GetInt("days")
	model, _ := cmd.Flags().GetString("model")
	openAIAPIKey, _ := cmd.Flags().GetString("openai-api-key")
	notion, _ := cmd.Flags().GetBool("notion")
	databaseID, _ := cmd.Flags().GetString("notion-database-id")
	updateExisting, _ := cmd.Flags().GetBool("update-existing")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return &types.InvoiceArgs{
		Keywords:       keywords,
		StartDate:      startDate,
		EndDate:        endDate,
		Days:           days,
		Model:          model,
		OpenAIAPIKey:   openAIAPIKey,
		Notion:         notion,
		DatabaseID:     databaseID,
		UpdateExisting: updateExisting,
		DryRun:         dryRun,
		Verbose:        verbose,
	}, nil
}

// runUsageCommand is the entry point for the root command.
func (app *CLIApp) runUsageCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseUsageArgs(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.usageUseCase.Run(ctx, cliArgs)
}

// runInvoicesCommand is the entry point for the invoices subcommand.
func (app *CLIApp) runInvoicesCommand(cmd *cobra.Command, args []string) error {
	invoiceArgs, err := app.parseInvoiceArgs(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.invoiceUseCase.Run(ctx, invoiceArgs)
}

// SetUsageUseCase sets the usage use case for the CLI app.
func (app *CLIApp) SetUsageUseCase(useCase *usecase.UsageUseCase) {
	app.usageUseCase = useCase
}

// SetInvoiceUseCase sets the invoice use case for the CLI app.
func (app *CLIApp) SetInvoiceUseCase(useCase *usecase.InvoiceUseCase) {
	app.invoiceUseCase = useCase
}
