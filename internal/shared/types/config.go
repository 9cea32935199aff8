package types

// Config represents the application configuration. It is constructed once at
// startup from the state file, an optional override file, and environment
// variables, and passed by injection to every component that needs it.
type Config struct {
	Timezone          string            `json:"timezone" yaml:"timezone" toml:"timezone"`
	FalAPIKey         string            `json:"api_key,omitempty" yaml:"api_key" toml:"api_key"`
	OpenAIAPIKey      string            `json:"openai_api_key,omitempty" yaml:"openai_api_key" toml:"openai_api_key"`
	NotionAPIKey      string            `json:"notion_api_key,omitempty" yaml:"notion_api_key" toml:"notion_api_key"`
	GoogleAccessToken string            `json:"google_access_token,omitempty" yaml:"google_access_token" toml:"google_access_token"`
	Models            []string          `json:"models" yaml:"models" toml:"models"`
	NotionDatabases   map[string]string `json:"notion_databases,omitempty" yaml:"notion_databases" toml:"notion_databases"`
	InvoiceDatabaseID string            `json:"invoice_database_id,omitempty" yaml:"invoice_database_id" toml:"invoice_database_id"`
	InvoiceKeywords   []string          `json:"invoice_keywords,omitempty" yaml:"invoice_keywords" toml:"invoice_keywords"`
	DefaultPreset     string            `json:"default_preset,omitempty" yaml:"default_preset" toml:"default_preset"`
}

// DefaultConfig returns the configuration used when no state file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Timezone:      "Asia/Seoul",
		DefaultPreset: "last-7-days",
		Models:        []string{},
	}
}

// MaskKey hides the middle of an API key for display, keeping the first and
// last four characters.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// DatabaseFor returns the Notion database ID mapped to the given key alias,
// falling back to fallback when no mapping exists.
func (c *Config) DatabaseFor(alias, fallback string) string {
	if id, ok := c.NotionDatabases[alias]; ok && id != "" {
		return id
	}
	return fallback
}

// Merge overlays non-zero fields of other onto c. Used for --config-file
// overrides.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Timezone != "" {
		c.Timezone = other.Timezone
	}
	if other.FalAPIKey != "" {
		c.FalAPIKey = other.FalAPIKey
	}
	if other.OpenAIAPIKey != "" {
		c.OpenAIAPIKey = other.OpenAIAPIKey
	}
	if other.NotionAPIKey != "" {
		c.NotionAPIKey = other.NotionAPIKey
	}
	if other.GoogleAccessToken != "" {
		c.GoogleAccessToken = other.GoogleAccessToken
	}
	if len(other.Models) > 0 {
		c.Models = other.Models
	}
	if len(other.NotionDatabases) > 0 {
		c.NotionDatabases = other.NotionDatabases
	}
	if other.InvoiceDatabaseID != "" {
		c.InvoiceDatabaseID = other.InvoiceDatabaseID
	}
	if len(other.InvoiceKeywords) > 0 {
		c.InvoiceKeywords = other.InvoiceKeywords
	}
	if other.DefaultPreset != "" {
		c.DefaultPreset = other.DefaultPreset
	}
}
