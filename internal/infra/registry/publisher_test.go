// Where: internal/infra/registry/publisher_test.go
// What: Tests for credential collection, login, and tag-and-push.
// Why: The token must never surface and the push sequence must stay exact.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/engine"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/ui"
)

// stubTerminal pins the stdin TTY check for the duration of a test.
func stubTerminal(t *testing.T, attached bool) {
	t.Helper()
	orig := interaction.IsTerminal
	interaction.IsTerminal = func(*os.File) bool { return attached }
	t.Cleanup(func() { interaction.IsTerminal = orig })
}

type fakeRunner struct {
	calls     [][]string
	lastInput string
	failPush  bool
}

func (f *fakeRunner) record(name string, args []string) {
	f.calls = append(f.calls, append([]string{name}, args...))
}

func (f *fakeRunner) Run(_ context.Context, _, name string, args ...string) error {
	f.record(name, args)
	if f.failPush && len(args) > 0 && args[0] == "push" {
		return fmt.Errorf("run %s: exit status 1", name)
	}
	return nil
}

func (f *fakeRunner) RunOutput(_ context.Context, _, name string, args ...string) ([]byte, error) {
	f.record(name, args)
	return nil, nil
}

func (f *fakeRunner) RunQuiet(_ context.Context, _, name string, args ...string) error {
	f.record(name, args)
	return nil
}

func (f *fakeRunner) RunInput(_ context.Context, _ string, input io.Reader, name string, args ...string) error {
	f.record(name, args)
	payload, _ := io.ReadAll(input)
	f.lastInput = string(payload)
	return nil
}

type fakeClient struct {
	tags []string
}

func (f *fakeClient) Ping(_ context.Context) (types.Ping, error) {
	return types.Ping{}, nil
}

func (f *fakeClient) ImageList(_ context.Context, _ image.ListOptions) ([]image.Summary, error) {
	return []image.Summary{{RepoTags: f.tags}}, nil
}

func (f *fakeClient) ImageBuild(_ context.Context, _ io.Reader, _ build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	return build.ImageBuildResponse{}, nil
}

type fakePrompter struct {
	answers map[string]string
	secrets map[string]string
	asked   []string
}

func (f *fakePrompter) Input(title, suggestion string) (string, error) {
	f.asked = append(f.asked, title)
	if answer, ok := f.answers[title]; ok {
		return answer, nil
	}
	return suggestion, nil
}

func (f *fakePrompter) Secret(title string) (ui.Secret, error) {
	f.asked = append(f.asked, title)
	return ui.NewSecret(f.secrets[title]), nil
}

func newTestPublisher(runner *fakeRunner, client *fakeClient, prompter *fakePrompter, out *bytes.Buffer) *Publisher {
	return &Publisher{
		Runner:   runner,
		Docker:   func() (engine.DockerClient, error) { return client, nil },
		Log:      ui.NewTestLogger(out),
		Prompter: prompter,
	}
}

func TestCollectDefaultsRepositoryFromUserAndBasename(t *testing.T) {
	stubTerminal(t, true)
	prompter := &fakePrompter{}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{RegistryUser: "alice", RegistryToken: ui.NewSecret("tok")}

	creds, err := pub.Collect(cfg, config.PublishDefaults{}, "app", "v1")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Repository != "alice/app" {
		t.Fatalf("Repository = %q, want %q", creds.Repository, "alice/app")
	}
	if creds.Tag != "v1" {
		t.Fatalf("Tag = %q, want %q", creds.Tag, "v1")
	}
}

func TestCollectExpandsBareRepositoryName(t *testing.T) {
	stubTerminal(t, true)
	prompter := &fakePrompter{answers: map[string]string{
		"Registry repository (namespace/name)": "proj",
	}}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{RegistryUser: "alice", RegistryToken: ui.NewSecret("tok")}

	creds, err := pub.Collect(cfg, config.PublishDefaults{}, "app", "v1")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Repository != "alice/proj" {
		t.Fatalf("Repository = %q, want %q", creds.Repository, "alice/proj")
	}
}

func TestCollectEnvOverridesSkipRepositoryPrompt(t *testing.T) {
	stubTerminal(t, true)
	prompter := &fakePrompter{}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{
		RegistryUser:       "alice",
		RegistryToken:      ui.NewSecret("tok"),
		RegistryNamespace:  "team",
		RegistryRepository: "svc",
	}

	creds, err := pub.Collect(cfg, config.PublishDefaults{}, "app", "v1")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Repository != "team/svc" {
		t.Fatalf("Repository = %q, want %q", creds.Repository, "team/svc")
	}
	for _, title := range prompter.asked {
		if strings.Contains(title, "repository") {
			t.Fatalf("unexpected repository prompt: %v", prompter.asked)
		}
	}
}

func TestCollectSkipsTagPromptWhenEnvSupplied(t *testing.T) {
	stubTerminal(t, true)
	prompter := &fakePrompter{}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{
		RegistryUser:       "alice",
		RegistryToken:      ui.NewSecret("tok"),
		RegistryNamespace:  "team",
		RegistryRepository: "svc",
		ImageTag:           "v2",
		ImageTagFromEnv:    true,
	}

	creds, err := pub.Collect(cfg, config.PublishDefaults{}, "app", "v2")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Tag != "v2" {
		t.Fatalf("Tag = %q, want %q", creds.Tag, "v2")
	}
	if len(prompter.asked) != 0 {
		t.Fatalf("expected no prompts for a fully configured run, got %v", prompter.asked)
	}
}

func TestCollectWithoutTerminalUsesSuggestions(t *testing.T) {
	stubTerminal(t, false)
	prompter := &fakePrompter{}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{RegistryUser: "alice", RegistryToken: ui.NewSecret("tok")}
	saved := config.PublishDefaults{Repository: "alice/app"}

	creds, err := pub.Collect(cfg, saved, "app", "v1")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Repository != "alice/app" {
		t.Fatalf("Repository = %q, want %q", creds.Repository, "alice/app")
	}
	if creds.Tag != "v1" {
		t.Fatalf("Tag = %q, want %q", creds.Tag, "v1")
	}
	if len(prompter.asked) != 0 {
		t.Fatalf("expected no prompts without a terminal, got %v", prompter.asked)
	}
}

func TestCollectWithoutTerminalRequiresToken(t *testing.T) {
	stubTerminal(t, false)
	prompter := &fakePrompter{}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	cfg := &config.Config{RegistryUser: "alice"}

	if _, err := pub.Collect(cfg, config.PublishDefaults{}, "app", "v1"); err == nil {
		t.Fatal("expected error when the token is absent and stdin is not a terminal")
	}
	if len(prompter.asked) != 0 {
		t.Fatalf("expected no prompts without a terminal, got %v", prompter.asked)
	}
}

func TestCollectSuggestsSavedUsernameNotNamespace(t *testing.T) {
	stubTerminal(t, true)
	prompter := &fakePrompter{secrets: map[string]string{
		"Registry access token": "tok",
	}}
	pub := newTestPublisher(&fakeRunner{}, &fakeClient{}, prompter, &bytes.Buffer{})
	saved := config.PublishDefaults{Username: "alice", Namespace: "team", Repository: "team/svc"}

	creds, err := pub.Collect(&config.Config{}, saved, "app", "v1")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if creds.Username != "alice" {
		t.Fatalf("Username = %q, want saved username %q", creds.Username, "alice")
	}
}

func TestLoginFeedsTokenOverStdinOnly(t *testing.T) {
	runner := &fakeRunner{}
	out := &bytes.Buffer{}
	pub := newTestPublisher(runner, &fakeClient{}, &fakePrompter{}, out)
	creds := Credentials{Username: "alice", Token: ui.NewSecret("s3cr3t-token")}

	if err := pub.Login(context.Background(), creds); err != nil {
		t.Fatalf("Login: %v", err)
	}

	want := []string{"docker", "login", "-u", "alice", "--password-stdin", "docker.io"}
	if len(runner.calls) != 1 || !reflect.DeepEqual(runner.calls[0], want) {
		t.Fatalf("login call = %v, want %v", runner.calls, want)
	}
	if runner.lastInput != "s3cr3t-token" {
		t.Fatalf("stdin payload = %q, want token", runner.lastInput)
	}
	for _, arg := range runner.calls[0] {
		if strings.Contains(arg, "s3cr3t-token") {
			t.Fatal("token leaked into argument vector")
		}
	}
	if strings.Contains(out.String(), "s3cr3t-token") {
		t.Fatal("token leaked into log output")
	}
}

func TestSecretNeverReachesLogOutput(t *testing.T) {
	out := &bytes.Buffer{}
	log := ui.NewTestLogger(out)
	token := ui.NewSecret("super-secret-value")

	log.Info("collected credentials", "token", token)
	if strings.Contains(out.String(), "super-secret-value") {
		t.Fatal("secret serialized into log output")
	}
}

func TestResolveLocalImagePrefersConfiguredName(t *testing.T) {
	client := &fakeClient{tags: []string{"app:v1"}}
	pub := newTestPublisher(&fakeRunner{}, client, &fakePrompter{}, &bytes.Buffer{})

	got, err := pub.ResolveLocalImage(context.Background(), "app", "alice/proj", "v1")
	if err != nil {
		t.Fatalf("ResolveLocalImage: %v", err)
	}
	if got != "app" {
		t.Fatalf("ResolveLocalImage = %q, want %q", got, "app")
	}
}

func TestResolveLocalImageFallsBackToRepositoryName(t *testing.T) {
	client := &fakeClient{tags: []string{"proj:v1"}}
	pub := newTestPublisher(&fakeRunner{}, client, &fakePrompter{}, &bytes.Buffer{})

	got, err := pub.ResolveLocalImage(context.Background(), "app", "alice/proj", "v1")
	if err != nil {
		t.Fatalf("ResolveLocalImage: %v", err)
	}
	if got != "proj" {
		t.Fatalf("ResolveLocalImage = %q, want %q", got, "proj")
	}
}

func TestResolveLocalImageFailsWhenNothingMatches(t *testing.T) {
	client := &fakeClient{tags: []string{"other:v2"}}
	pub := newTestPublisher(&fakeRunner{}, client, &fakePrompter{}, &bytes.Buffer{})

	if _, err := pub.ResolveLocalImage(context.Background(), "app", "alice/proj", "v1"); err == nil {
		t.Fatal("expected error when no candidate image exists")
	}
}

func TestPushAddsLatestAlias(t *testing.T) {
	runner := &fakeRunner{}
	pub := newTestPublisher(runner, &fakeClient{}, &fakePrompter{}, &bytes.Buffer{})
	creds := Credentials{Username: "alice", Repository: "alice/proj", Tag: "v1"}

	if err := pub.Push(context.Background(), "app", creds); err != nil {
		t.Fatalf("Push: %v", err)
	}

	want := [][]string{
		{"docker", "tag", "app:v1", "docker.io/alice/proj:v1"},
		{"docker", "push", "docker.io/alice/proj:v1"},
		{"docker", "tag", "app:v1", "docker.io/alice/proj:latest"},
		{"docker", "push", "docker.io/alice/proj:latest"},
	}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Fatalf("push sequence = %v, want %v", runner.calls, want)
	}
}

func TestPushLatestTagSkipsAlias(t *testing.T) {
	runner := &fakeRunner{}
	pub := newTestPublisher(runner, &fakeClient{}, &fakePrompter{}, &bytes.Buffer{})
	creds := Credentials{Username: "alice", Repository: "alice/proj", Tag: "latest"}

	if err := pub.Push(context.Background(), "app", creds); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected one tag-and-push pair, got %v", runner.calls)
	}
}

func TestPushFailurePropagates(t *testing.T) {
	runner := &fakeRunner{failPush: true}
	pub := newTestPublisher(runner, &fakeClient{}, &fakePrompter{}, &bytes.Buffer{})
	creds := Credentials{Username: "alice", Repository: "alice/proj", Tag: "v1"}

	if err := pub.Push(context.Background(), "app", creds); err == nil {
		t.Fatal("expected push failure to propagate")
	}
}
