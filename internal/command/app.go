// Where: internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher over injected step implementations.
package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/meta"
	"github.com/graylanquantum/shipit/internal/version"
)

// Dependencies holds all injected step implementations required for CLI
// command execution. Every field is a function so tests can observe the
// call sequence without touching a real engine.
type Dependencies struct {
	Out      io.Writer
	ErrOut   io.Writer
	Prompter interaction.Prompter

	NewLogger   func(cfg *config.Config, verbose bool) (*ui.Logger, error)
	Install     func(ctx context.Context, cfg *config.Config, log *ui.Logger) error
	Fetch       func(ctx context.Context, cfg *config.Config, log *ui.Logger, url string) error
	HasMetadata func(dir string) bool
	Describe    func(dir string) (string, error)
	Build       func(ctx context.Context, cfg *config.Config, log *ui.Logger, imageRef string, verbose bool) error
	Publish     func(ctx context.Context, cfg *config.Config, log *ui.Logger, opts PublishOptions) error
}

// PublishOptions carries per-run publish inputs from the dispatcher.
type PublishOptions struct {
	// DefaultTag seeds the tag prompt; for the full sequence it is the
	// effective build tag, for a bare push the configured tag.
	DefaultTag   string
	SaveDefaults bool
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	EnvFile string `name:"env-file" help:"Path to .env file"`
	Verbose bool   `short:"v" help:"Verbose output"`
	NoSave  bool   `name:"no-save-defaults" help:"Do not persist publish defaults"`

	Install InstallCmd `cmd:"" help:"Ensure the container engine is installed and usable"`
	Build   BuildCmd   `cmd:"" help:"Clone the source repository and build the image"`
	Push    PushCmd    `cmd:"" help:"Authenticate to the registry and push the image"`
	All     AllCmd     `cmd:"" default:"1" help:"Run the full install, build, and push sequence"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type (
	InstallCmd struct{}
	BuildCmd   struct{}
	PushCmd    struct{}
	AllCmd     struct{}
	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution. It parses the
// arguments, loads environment overrides, and dispatches to the requested
// sequence. Returns 0 on success (including the re-login soft exit),
// 1 on fatal errors, and 2 on precondition or usage violations.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	cli := CLI{}
	// Kong handles --help internally and then calls Exit(0); record that
	// instead of terminating so the dispatcher owns the process exit.
	helpShown := false
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Install the container engine, build an image from source, and publish it."),
		kong.Writers(out, errOut),
		kong.Exit(func(code int) {
			if code == 0 {
				helpShown = true
			}
		}),
	)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if helpShown {
		return 0
	}
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", meta.AppName, err)
		fmt.Fprintf(errOut, "usage: %s <install|build|push|all|version> [flags]\n", meta.AppName)
		return 2
	}

	loadEnvFile(errOut, cli.EnvFile)

	if kctx.Command() == "version" {
		fmt.Fprintln(out, version.GetVersion())
		return 0
	}

	cfg := config.FromEnv()
	log, err := deps.NewLogger(cfg, cli.Verbose)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer log.Close()

	switch kctx.Command() {
	case "install":
		return exitCode(log, deps.Install(ctx, cfg, log))
	case "build":
		return exitCode(log, runBuild(ctx, cli, cfg, deps, log))
	case "push":
		return exitCode(log, runPush(ctx, cli, cfg, deps, log))
	case "all":
		return exitCode(log, runAll(ctx, cli, cfg, deps, log))
	}

	fmt.Fprintf(errOut, "usage: %s <install|build|push|all|version> [flags]\n", meta.AppName)
	return 2
}

// loadEnvFile loads an explicit --env-file loudly and a .env in the
// working directory quietly when present.
func loadEnvFile(errOut io.Writer, path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(errOut, "warning: failed to load env file %s: %v\n", path, err)
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(errOut, "warning: failed to load .env: %v\n", err)
		}
	}
}

// runAll executes the full install, build, and publish sequence.
func runAll(ctx context.Context, cli CLI, cfg *config.Config, deps Dependencies, log *ui.Logger) error {
	if err := deps.Install(ctx, cfg, log); err != nil {
		return err
	}
	tag, err := fetchAndBuild(ctx, cli, cfg, deps, log)
	if err != nil {
		return err
	}
	return deps.Publish(ctx, cfg, log, PublishOptions{
		DefaultTag:   tag,
		SaveDefaults: !cli.NoSave,
	})
}
