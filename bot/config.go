package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/cotabot/core/config"
	"github.com/m3rciful/cotabot/core/database"
)

// Snapshot store drivers.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// StorageConfig selects where registry snapshots live.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	// Path is the snapshot file location for the file driver.
	Path string `yaml:"path" envconfig:"STORAGE_PATH"`
}

// Config is the full application configuration: the reusable core settings
// plus the cotabot-specific storage section.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig   `yaml:"storage"`
	Database database.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML config file, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalizeStorage(&cfg.Storage); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeStorage(sc *StorageConfig) error {
	sc.Driver = strings.ToLower(strings.TrimSpace(sc.Driver))
	switch sc.Driver {
	case "":
		sc.Driver = StorageFile
	case StorageFile, StoragePostgres:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: file, postgres", sc.Driver)
	}
	if sc.Driver == StorageFile && strings.TrimSpace(sc.Path) == "" {
		sc.Path = "data/sessions.json"
	}
	return nil
}
