// Where: internal/infra/config/config.go
// What: Run configuration assembled once at startup.
// Why: Replace ambient env reads with one immutable value passed to each component.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/meta"
)

// Config holds every value a run can consume. It is populated from
// environment overrides and built-in defaults before the first component
// runs and never mutated afterwards; prompt answers travel as explicit
// arguments instead of being written back here.
type Config struct {
	RepoURL          string
	RepoURLFromEnv   bool
	CloneDir         string
	ImageName        string
	ImageTag         string
	ImageTagFromEnv  bool
	LogFile          string
	MinEngineVersion string

	RegistryUser       string
	RegistryToken      ui.Secret
	RegistryNamespace  string
	RegistryRepository string
}

// FromEnv builds the run configuration from SHIPIT_* environment
// variables, falling back to built-in defaults.
func FromEnv() *Config {
	repoURL := envOr("REPO_URL", meta.DefaultRepoURL)
	home := homeDir()

	cfg := &Config{
		RepoURL:          repoURL,
		RepoURLFromEnv:   envOr("REPO_URL", "") != "",
		CloneDir:         envOr("CLONE_DIR", filepath.Join(home, meta.HomeDir, meta.CheckoutDir)),
		ImageName:        envOr("IMAGE_NAME", RepoBasename(repoURL)),
		ImageTag:         envOr("IMAGE_TAG", meta.DefaultTag),
		ImageTagFromEnv:  envOr("IMAGE_TAG", "") != "",
		LogFile:          envOr("LOG_FILE", filepath.Join(home, meta.HomeDir, meta.LogFileName)),
		MinEngineVersion: envOr("MIN_ENGINE_VERSION", meta.MinEngineVersion),

		RegistryUser:       envOr("REGISTRY_USER", ""),
		RegistryToken:      ui.NewSecret(envOr("REGISTRY_TOKEN", "")),
		RegistryNamespace:  envOr("REGISTRY_NAMESPACE", ""),
		RegistryRepository: envOr("REGISTRY_REPOSITORY", ""),
	}
	return cfg
}

// RepoBasename derives the image-name default from a clone URL:
// "https://host/owner/app.git" yields "app".
func RepoBasename(repoURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(repoURL), "/"), ".git")
	base := trimmed[strings.LastIndexAny(trimmed, "/:")+1:]
	if base == "" {
		return meta.AppName
	}
	return strings.ToLower(base)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(meta.EnvPrefix + "_" + key)); v != "" {
		return v
	}
	return fallback
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
