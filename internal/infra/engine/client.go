// Where: internal/infra/engine/client.go
// What: Docker SDK client constructor and interface slice.
// Why: Centralize daemon access and enable fakes in tests.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// DockerClient defines the subset of Docker SDK methods used by this tool.
type DockerClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
}

// ClientFactory produces a Docker client on demand. The daemon may not be
// installed yet when the CLI starts, so construction is deferred.
type ClientFactory func() (DockerClient, error)

// NewClient constructs a Docker SDK client using environment defaults.
func NewClient() (DockerClient, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return dockerClient, nil
}
