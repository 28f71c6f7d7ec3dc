// Where: internal/infra/config/defaults.go
// What: Persisted publish defaults load/save.
// Why: Manage ~/.shipit/config.yaml so prompts can suggest last-used values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/graylanquantum/shipit/internal/meta"
)

// PublishDefaults stores last-used publish inputs. The access token is
// never part of this structure.
type PublishDefaults struct {
	Username   string `yaml:"username,omitempty"`
	Namespace  string `yaml:"namespace,omitempty"`
	Repository string `yaml:"repository,omitempty"`
	Tag        string `yaml:"tag,omitempty"`
}

// FileConfig represents the ~/.shipit/config.yaml persisted configuration.
type FileConfig struct {
	Version int             `yaml:"version"`
	Publish PublishDefaults `yaml:"publish,omitempty"`
}

// DefaultsPath returns the persisted configuration location.
func DefaultsPath() string {
	return filepath.Join(homeDir(), meta.HomeDir, meta.ConfigFileName)
}

// LoadDefaults reads and parses the persisted configuration. A missing
// file yields an empty config without error.
func LoadDefaults(path string) (FileConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{Version: 1}, nil
		}
		return FileConfig{}, fmt.Errorf("read defaults: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode defaults: %w", err)
	}
	return cfg, nil
}

// SaveDefaults writes the persisted configuration to the specified path.
func SaveDefaults(path string, cfg FileConfig) error {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create defaults dir: %w", err)
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write defaults: %w", err)
	}
	return nil
}
