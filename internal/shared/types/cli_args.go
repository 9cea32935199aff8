package types

// CLIArgs represents the command-line arguments for the usage command.
type CLIArgs struct {
	ConfigFile       string
	APIKey           string
	Models           []string
	Preset           string
	StartDate        string
	EndDate          string
	Timeframe        string
	Timezone         string
	BoundToTimeframe bool
	Notion           bool
	NotionDatabaseID string
	NotionAPIKey     string
	UpdateExisting   bool
	DryRun           bool
	Verbose          bool
	ReportName       string
	ReportType       []string
	Dir              string
}

// InvoiceArgs represents the command-line arguments for the invoices command.
type InvoiceArgs struct {
	Keywords       []string
	StartDate      string
	EndDate        string
	Days           int
	Model          string
	OpenAIAPIKey   string
	Notion         bool
	DatabaseID     string
	UpdateExisting bool
	DryRun         bool
	Verbose        bool
}
