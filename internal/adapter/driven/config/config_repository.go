package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigRepositoryImpl implements ConfigRepository. State lives in a JSON
// file under the user config directory and is rewritten wholesale on Save.
type ConfigRepositoryImpl struct {
	statePath string
}

// NewConfigRepository creates a ConfigRepository with the default state file
// location (~/.config/ai-usage/config.json, or the current directory when no
// user config dir is resolvable).
func NewConfigRepository() repository.ConfigRepository {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return &ConfigRepositoryImpl{
		statePath: filepath.Join(dir, "ai-usage", "config.json"),
	}
}

// NewConfigRepositoryAt creates a ConfigRepository with an explicit state
// file path.
func NewConfigRepositoryAt(statePath string) repository.ConfigRepository {
	return &ConfigRepositoryImpl{statePath: statePath}
}

// Load reads the state file and fills unset credential fields from the
// environment. A missing or corrupt state file yields the defaults rather
// than an error.
func (r *ConfigRepositoryImpl) Load() (*types.Config, error) {
	cfg := types.DefaultConfig()

	data, err := os.ReadFile(r.statePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run.
	case err != nil:
		return nil, fmt.Errorf("error reading config state: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			// A corrupt state file is recoverable; it will be rewritten on
			// the next Save.
			cfg = types.DefaultConfig()
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv fills credentials that are still empty from the environment. The
// state file takes precedence, except for the OpenAI key where the
// environment wins.
func applyEnv(cfg *types.Config) {
	if cfg.FalAPIKey == "" {
		cfg.FalAPIKey = os.Getenv("FAL_ADMIN_API_KEY")
	}
	if cfg.NotionAPIKey == "" {
		cfg.NotionAPIKey = os.Getenv("NOTION_API_KEY")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	}
	if cfg.GoogleAccessToken == "" {
		cfg.GoogleAccessToken = os.Getenv("GOOGLE_ACCESS_TOKEN")
	}
	if cfg.InvoiceDatabaseID == "" {
		cfg.InvoiceDatabaseID = os.Getenv("NOTION_DATABASE_ID")
	}
}

// Save writes the state file, creating its directory on first use.
func (r *ConfigRepositoryImpl) Save(cfg *types.Config) error {
	if err := os.MkdirAll(filepath.Dir(r.statePath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(r.statePath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config state: %w", err)
	}
	return nil
}

// LoadConfigFile parses an explicit TOML, YAML, or JSON override file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}
