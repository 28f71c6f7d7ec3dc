// Where: internal/infra/registry/publisher.go
// What: Credential collection, login, and tag-and-push flow.
// Why: Publish the locally built image without ever exposing the token.
package registry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/engine"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/run"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/meta"
)

// Credentials holds the collected publish inputs for one run.
type Credentials struct {
	Username   string
	Token      ui.Secret
	Repository string // namespace/name
	Tag        string
}

// Publisher drives credential collection, authentication, and tag-and-push.
type Publisher struct {
	Runner   run.CommandRunner
	Docker   engine.ClientFactory
	Log      *ui.Logger
	Prompter interaction.Prompter
}

// Collect gathers username, token, repository, and tag, preferring
// environment-supplied values over prompts. The token prompt reads with
// echo disabled; saved defaults only ever seed suggestions. Without a
// terminal on stdin each prompt degrades to its suggestion, so a fully
// environment-configured run never blocks on input.
func (p *Publisher) Collect(cfg *config.Config, saved config.PublishDefaults, gitBasename, defaultTag string) (Credentials, error) {
	creds := Credentials{}

	username := cfg.RegistryUser
	if username == "" {
		answer, err := p.ask("Registry username", saved.Username)
		if err != nil {
			return Credentials{}, err
		}
		username = strings.TrimSpace(answer)
	}
	if username == "" {
		return Credentials{}, fmt.Errorf("registry username is required")
	}
	creds.Username = username

	token := cfg.RegistryToken
	if token.IsZero() && interaction.IsTerminal(os.Stdin) {
		secret, err := p.Prompter.Secret("Registry access token")
		if err != nil {
			return Credentials{}, err
		}
		token = secret
	}
	if token.IsZero() {
		return Credentials{}, fmt.Errorf("registry access token is required")
	}
	creds.Token = token

	repository, err := p.collectRepository(cfg, saved, username, gitBasename)
	if err != nil {
		return Credentials{}, err
	}
	creds.Repository = repository

	tag := defaultTag
	if !cfg.ImageTagFromEnv {
		suggestion := defaultTag
		if suggestion == meta.DefaultTag && saved.Tag != "" {
			suggestion = saved.Tag
		}
		answer, err := p.ask("Image tag", suggestion)
		if err != nil {
			return Credentials{}, err
		}
		tag = answer
	}
	creds.Tag = strings.TrimSpace(tag)
	if creds.Tag == "" {
		return Credentials{}, fmt.Errorf("image tag is required")
	}

	return creds, nil
}

// ask prompts when a terminal is attached and returns the suggestion
// unchanged otherwise.
func (p *Publisher) ask(title, suggestion string) (string, error) {
	if !interaction.IsTerminal(os.Stdin) {
		return suggestion, nil
	}
	return p.Prompter.Input(title, suggestion)
}

func (p *Publisher) collectRepository(cfg *config.Config, saved config.PublishDefaults, username, gitBasename string) (string, error) {
	if cfg.RegistryNamespace != "" || cfg.RegistryRepository != "" {
		ns := cfg.RegistryNamespace
		if ns == "" {
			ns = username
		}
		name := cfg.RegistryRepository
		if name == "" {
			name = gitBasename
		}
		return ns + "/" + name, nil
	}

	suggestion := saved.Repository
	if suggestion == "" {
		suggestion = username + "/" + gitBasename
	}
	answer, err := p.ask("Registry repository (namespace/name)", suggestion)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("registry repository is required")
	}
	if !strings.Contains(answer, "/") {
		answer = username + "/" + answer
	}
	return answer, nil
}

// Login authenticates against the registry. The token travels over the
// child's stdin only, never argv or environment, so it cannot reach the
// process list or the run log.
func (p *Publisher) Login(ctx context.Context, creds Credentials) error {
	p.Log.Info("authenticating to registry", "registry", meta.DefaultRegistry, "user", creds.Username)
	err := p.Runner.RunInput(ctx, "", strings.NewReader(creds.Token.Reveal()),
		"docker", "login", "-u", creds.Username, "--password-stdin", meta.DefaultRegistry)
	if err != nil {
		return fmt.Errorf("registry login failed: %w", err)
	}
	p.Log.Success("authenticated", "registry", meta.DefaultRegistry)
	return nil
}

// ResolveLocalImage returns the local image name to push: the configured
// name when present, else the repository's name part when an image exists
// under it and the same tag.
func (p *Publisher) ResolveLocalImage(ctx context.Context, configured, repository, tag string) (string, error) {
	client, err := p.Docker()
	if err != nil {
		return "", err
	}

	if ok, err := engine.ImageExists(ctx, client, configured+":"+tag); err != nil {
		return "", err
	} else if ok {
		return configured, nil
	}

	fallback := repository
	if _, name, ok := strings.Cut(repository, "/"); ok {
		fallback = name
	}
	if fallback != configured {
		if ok, err := engine.ImageExists(ctx, client, fallback+":"+tag); err != nil {
			return "", err
		} else if ok {
			p.Log.Warn("configured image absent, using repository-named image",
				"configured", configured, "using", fallback)
			return fallback, nil
		}
	}
	return "", fmt.Errorf("no local image %s:%s (also tried %s:%s)", configured, tag, fallback, tag)
}

// Push retags localImage under the fully qualified remote reference and
// pushes it; a non-latest tag is additionally pushed as the latest alias
// so untagged pulls always see the newest publish.
func (p *Publisher) Push(ctx context.Context, localImage string, creds Credentials) error {
	local := localImage + ":" + creds.Tag

	remote, err := RemoteRef(creds.Repository, creds.Tag)
	if err != nil {
		return err
	}
	if err := p.tagAndPush(ctx, local, remote); err != nil {
		return err
	}

	if creds.Tag != "latest" {
		alias, err := RemoteRef(creds.Repository, "latest")
		if err != nil {
			return err
		}
		if err := p.tagAndPush(ctx, local, alias); err != nil {
			return err
		}
	}
	p.Log.Success("image published", "image", remote)
	return nil
}

func (p *Publisher) tagAndPush(ctx context.Context, local, remote string) error {
	if err := p.Runner.Run(ctx, "", "docker", "tag", local, remote); err != nil {
		return fmt.Errorf("tag %s as %s: %w", local, remote, err)
	}
	if err := p.Runner.Run(ctx, "", "docker", "push", remote); err != nil {
		return fmt.Errorf("push %s: %w", remote, err)
	}
	return nil
}
