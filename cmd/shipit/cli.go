// Where: cmd/shipit/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/graylanquantum/shipit/internal/command"
	"github.com/graylanquantum/shipit/internal/infra/build"
	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/engine"
	"github.com/graylanquantum/shipit/internal/infra/installer"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/registry"
	"github.com/graylanquantum/shipit/internal/infra/run"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/infra/vcs"
)

// buildDependencies constructs the runtime step implementations the
// dispatcher composes into command sequences.
func buildDependencies() command.Dependencies {
	prompter := interaction.HuhPrompter{}

	return command.Dependencies{
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		Prompter: prompter,

		NewLogger: func(cfg *config.Config, verbose bool) (*ui.Logger, error) {
			return ui.NewLogger(os.Stdout, cfg.LogFile, verbose)
		},
		Install: func(ctx context.Context, cfg *config.Config, log *ui.Logger) error {
			return installer.New(runnerFor(log), engine.NewClient, log).Ensure(ctx, cfg)
		},
		Fetch: func(ctx context.Context, cfg *config.Config, log *ui.Logger, url string) error {
			return (&vcs.Fetcher{Log: log}).Fetch(ctx, url, cfg.CloneDir)
		},
		HasMetadata: vcs.HasMetadata,
		Describe:    vcs.Describe,
		Build: func(ctx context.Context, cfg *config.Config, log *ui.Logger, imageRef string, verbose bool) error {
			builder := &build.Builder{
				Runner:  runnerFor(log),
				Docker:  engine.NewClient,
				Log:     log,
				Verbose: verbose,
			}
			return builder.Build(ctx, cfg.CloneDir, imageRef)
		},
		Publish: func(ctx context.Context, cfg *config.Config, log *ui.Logger, opts command.PublishOptions) error {
			return publish(ctx, cfg, log, prompter, opts)
		},
	}
}

func runnerFor(log *ui.Logger) run.ExecRunner {
	return run.ExecRunner{Sink: log.CommandSink()}
}

// publish drives the credential, authentication, resolution, and
// tag-and-push stages, then persists the non-secret publish defaults.
func publish(ctx context.Context, cfg *config.Config, log *ui.Logger, prompter interaction.Prompter, opts command.PublishOptions) error {
	pub := &registry.Publisher{
		Runner:   runnerFor(log),
		Docker:   engine.NewClient,
		Log:      log,
		Prompter: prompter,
	}

	saved, err := config.LoadDefaults(config.DefaultsPath())
	if err != nil {
		log.Warn("ignoring unreadable publish defaults", "err", err)
		saved = config.FileConfig{}
	}

	creds, err := pub.Collect(cfg, saved.Publish, config.RepoBasename(cfg.RepoURL), opts.DefaultTag)
	if err != nil {
		return err
	}
	if err := pub.Login(ctx, creds); err != nil {
		return err
	}
	localImage, err := pub.ResolveLocalImage(ctx, cfg.ImageName, creds.Repository, creds.Tag)
	if err != nil {
		return err
	}
	if err := pub.Push(ctx, localImage, creds); err != nil {
		return err
	}

	if opts.SaveDefaults {
		namespace, _, _ := strings.Cut(creds.Repository, "/")
		saved.Publish = config.PublishDefaults{
			Username:   creds.Username,
			Namespace:  namespace,
			Repository: creds.Repository,
			Tag:        creds.Tag,
		}
		if err := config.SaveDefaults(config.DefaultsPath(), saved); err != nil {
			log.Warn("could not save publish defaults", "err", err)
		}
	}
	return nil
}
