// Where: internal/infra/installer/installer.go
// What: Idempotent container engine installation and usability checks.
// Why: Guarantee later steps find a running daemon the invoking user can reach.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/engine"
	"github.com/graylanquantum/shipit/internal/infra/run"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/meta"
)

// ErrRelogin signals that group membership was just changed and the
// operator must start a new session before rerunning. It is a clean exit,
// not a failure.
var ErrRelogin = errors.New("group membership changed, log out and back in, then rerun")

// ErrPrecondition signals a privilege misconfiguration detected before any
// work starts: running as root, or lacking sudo capability.
var ErrPrecondition = errors.New("precondition violation")

// Installer ensures the engine is installed, its service is running, and
// the invoking user can issue commands without elevated privileges.
type Installer struct {
	Runner run.CommandRunner
	Docker engine.ClientFactory
	Log    *ui.Logger

	// Overridable for tests.
	Geteuid       func() int
	CurrentUser   func() (*user.User, error)
	OSReleasePath string
}

func New(runner run.CommandRunner, docker engine.ClientFactory, log *ui.Logger) *Installer {
	return &Installer{
		Runner:        runner,
		Docker:        docker,
		Log:           log,
		Geteuid:       os.Geteuid,
		CurrentUser:   user.Current,
		OSReleasePath: "/etc/os-release",
	}
}

// Ensure is idempotent: with the engine already installed at a sufficient
// version and the daemon reachable, it issues no package-state commands.
func (i *Installer) Ensure(ctx context.Context, cfg *config.Config) error {
	if err := i.checkPrivileges(ctx); err != nil {
		return err
	}

	installed, err := engine.CLIVersion(ctx, i.Runner)
	switch {
	case err == nil && engine.AtLeast(installed, cfg.MinEngineVersion):
		i.Log.Info("engine already installed", "version", installed)
	case err == nil:
		i.Log.Warn("engine below required version, reinstalling",
			"installed", installed, "required", cfg.MinEngineVersion)
		if err := i.installPackages(ctx); err != nil {
			return err
		}
	default:
		i.Log.Info("engine not found, installing")
		if err := i.installPackages(ctx); err != nil {
			return err
		}
	}

	if err := i.ensureService(ctx); err != nil {
		return err
	}
	return i.ensureUsable(ctx)
}

func (i *Installer) checkPrivileges(ctx context.Context) error {
	if i.Geteuid() == 0 {
		return fmt.Errorf("%w: run as a regular user, not root", ErrPrecondition)
	}
	if err := i.Runner.RunQuiet(ctx, "", "sudo", "-n", "true"); err != nil {
		// No cached credential; let sudo prompt once.
		if err := i.Runner.Run(ctx, "", "sudo", "-v"); err != nil {
			return fmt.Errorf("%w: administrative privileges via sudo are required", ErrPrecondition)
		}
	}
	return nil
}

func (i *Installer) ensureService(ctx context.Context) error {
	if err := i.Runner.Run(ctx, "", "sudo", "systemctl", "enable", "--now", meta.EngineService); err != nil {
		return fmt.Errorf("enable engine service: %w", err)
	}
	return nil
}

// ensureUsable verifies the invoking user can talk to the daemon. A user
// missing the engine group is added to it and the run ends with the
// re-login instruction, since group changes only apply to new sessions.
func (i *Installer) ensureUsable(ctx context.Context) error {
	if engine.DaemonReachable(ctx, i.Docker) {
		i.Log.Success("engine is usable")
		return nil
	}

	usr, err := i.CurrentUser()
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}
	if !i.inEngineGroup(ctx) {
		i.Log.Warn("adding user to engine group", "user", usr.Username, "group", meta.EngineGroup)
		if err := i.Runner.Run(ctx, "", "sudo", "usermod", "-aG", meta.EngineGroup, usr.Username); err != nil {
			return fmt.Errorf("add user to %s group: %w", meta.EngineGroup, err)
		}
		return ErrRelogin
	}
	return fmt.Errorf("engine daemon unreachable despite %s group membership; try 'sudo systemctl restart %s'",
		meta.EngineGroup, meta.EngineService)
}

func (i *Installer) inEngineGroup(ctx context.Context) bool {
	out, err := i.Runner.RunOutput(ctx, "", "id", "-nG")
	if err != nil {
		return false
	}
	for _, g := range strings.Fields(string(out)) {
		if g == meta.EngineGroup {
			return true
		}
	}
	return false
}
