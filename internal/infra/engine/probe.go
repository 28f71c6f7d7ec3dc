// Where: internal/infra/engine/probe.go
// What: Engine presence, daemon, and image probes.
// Why: Scoped checks for the installer and publisher without shelling out more than needed.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"

	"github.com/graylanquantum/shipit/internal/infra/run"
)

// CLIVersion returns the installed engine CLI version, or an error when
// the CLI is absent. The daemon does not need to be running.
func CLIVersion(ctx context.Context, runner run.CommandRunner) (string, error) {
	out, err := runner.RunOutput(ctx, "", "docker", "--version")
	if err != nil {
		return "", fmt.Errorf("engine cli not available: %w", err)
	}
	return parseCLIVersion(string(out))
}

// parseCLIVersion extracts "27.3.1" from "Docker version 27.3.1, build abc".
func parseCLIVersion(out string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	for i, f := range fields {
		if f == "version" && i+1 < len(fields) {
			return strings.TrimSuffix(fields[i+1], ","), nil
		}
	}
	return "", fmt.Errorf("unrecognized engine version output: %q", strings.TrimSpace(out))
}

// BuildxAvailable reports whether the extended builder plugin responds.
func BuildxAvailable(ctx context.Context, runner run.CommandRunner) bool {
	return runner.RunQuiet(ctx, "", "docker", "buildx", "version") == nil
}

// DaemonReachable reports whether the invoking user can talk to the daemon.
func DaemonReachable(ctx context.Context, factory ClientFactory) bool {
	client, err := factory()
	if err != nil {
		return false
	}
	_, err = client.Ping(ctx)
	return err == nil
}

// ImageExists reports whether an image with the exact reference
// ("name:tag") exists locally.
func ImageExists(ctx context.Context, client DockerClient, ref string) (bool, error) {
	refFilter := filters.NewArgs(filters.Arg("reference", ref))
	images, err := client.ImageList(ctx, image.ListOptions{Filters: refFilter})
	if err != nil {
		return false, fmt.Errorf("list images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == ref {
				return true, nil
			}
		}
	}
	return false, nil
}
