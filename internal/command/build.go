// Where: internal/command/build.go
// What: Build command flow.
// Why: Keep the fetch, tag derivation, and build ordering in one place.
package command

import (
	"context"
	"os"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/meta"
)

// runBuild executes the 'build' command: installer, fetcher, tag
// derivation, builder.
func runBuild(ctx context.Context, cli CLI, cfg *config.Config, deps Dependencies, log *ui.Logger) error {
	if err := deps.Install(ctx, cfg, log); err != nil {
		return err
	}
	_, err := fetchAndBuild(ctx, cli, cfg, deps, log)
	return err
}

// fetchAndBuild clones the source, derives the effective tag, and builds
// the local image. It returns the effective tag for downstream publish.
func fetchAndBuild(ctx context.Context, cli CLI, cfg *config.Config, deps Dependencies, log *ui.Logger) (string, error) {
	url := resolveRepoURL(cfg, deps, log)
	if err := deps.Fetch(ctx, cfg, log, url); err != nil {
		return "", err
	}

	tag := effectiveTag(cfg, log, deps.HasMetadata, deps.Describe)
	imageRef := cfg.ImageName + ":" + tag
	if err := deps.Build(ctx, cfg, log, imageRef, cli.Verbose); err != nil {
		return "", err
	}
	return tag, nil
}

// resolveRepoURL prompts for the source URL when it was not supplied via
// environment and a terminal is attached; otherwise the configured value
// (built-in default included) is used as is.
func resolveRepoURL(cfg *config.Config, deps Dependencies, log *ui.Logger) string {
	if cfg.RepoURLFromEnv || deps.Prompter == nil || !interaction.IsTerminal(os.Stdin) {
		return cfg.RepoURL
	}
	answer, err := deps.Prompter.Input("Source repository URL", cfg.RepoURL)
	if err != nil || answer == "" {
		log.Debug("using configured repository URL", "url", cfg.RepoURL)
		return cfg.RepoURL
	}
	return answer
}

// effectiveTag returns the descriptive tag derived from checkout metadata
// when the configured tag is still the default sentinel; in every other
// case the configured tag is kept unchanged.
func effectiveTag(cfg *config.Config, log *ui.Logger, hasMetadata func(string) bool, describe func(string) (string, error)) string {
	if cfg.ImageTag != meta.DefaultTag || !hasMetadata(cfg.CloneDir) {
		return cfg.ImageTag
	}
	derived, err := describe(cfg.CloneDir)
	if err != nil || derived == "" {
		log.Warn("tag derivation failed, keeping configured tag", "err", err)
		return cfg.ImageTag
	}
	log.Info("derived image tag from checkout metadata", "tag", derived)
	return derived
}
