package repository

import (
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

// ConfigRepository defines the interface for configuration persistence.
// Load/Save operate on the JSON state file, which is read fully and
// rewritten wholesale; LoadConfigFile parses an explicit TOML, YAML, or
// JSON override file.
type ConfigRepository interface {
	Load() (*types.Config, error)
	Save(cfg *types.Config) error
	LoadConfigFile(filePath string) (*types.Config, error)
}
