// Where: internal/infra/run/runner.go
// What: External command execution.
// Why: Give every shell-out one funnel that tests can observe and fakes can replace.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CommandRunner defines the interface for executing external commands.
type CommandRunner interface {
	// Run streams combined output to the configured sink.
	Run(ctx context.Context, dir, name string, args ...string) error
	// RunOutput captures combined output instead of streaming it.
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	// RunQuiet discards all output. Used for probes where only the exit
	// status matters.
	RunQuiet(ctx context.Context, dir, name string, args ...string) error
	// RunInput feeds input to the child's stdin and streams output to the
	// sink. The input never appears in the argument vector, so secrets fed
	// this way stay out of the process list and the run log.
	RunInput(ctx context.Context, dir string, input io.Reader, name string, args ...string) error
}

// ExecRunner is a concrete implementation of CommandRunner using os/exec.
// Sink receives streamed command output; it defaults to os.Stdout.
type ExecRunner struct {
	Sink io.Writer
}

func (r ExecRunner) sink() io.Writer {
	if r.Sink != nil {
		return r.Sink
	}
	return os.Stdout
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.sink()
	cmd.Stderr = r.sink()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

func (r ExecRunner) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("run %s: %w", name, err)
	}
	return output, nil
}

func (r ExecRunner) RunQuiet(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

func (r ExecRunner) RunInput(ctx context.Context, dir string, input io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = input
	cmd.Stdout = r.sink()
	cmd.Stderr = r.sink()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
