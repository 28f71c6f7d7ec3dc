// Where: internal/infra/build/builder.go
// What: Image build execution.
// Why: Prefer the extended builder when present and fall back to the basic one.
package build

import (
	"context"
	"fmt"
	"os"

	buildtypes "github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/graylanquantum/shipit/internal/infra/engine"
	"github.com/graylanquantum/shipit/internal/infra/interaction"
	"github.com/graylanquantum/shipit/internal/infra/run"
	"github.com/graylanquantum/shipit/internal/infra/ui"
	"github.com/graylanquantum/shipit/internal/infra/vcs"
)

// Builder produces a locally tagged image from a checkout.
type Builder struct {
	Runner  run.CommandRunner
	Docker  engine.ClientFactory
	Log     *ui.Logger
	Verbose bool
}

// Build tags the checkout at dir as imageRef. When the buildx plugin
// responds it runs the extended builder; otherwise the checkout is tarred
// and built through the daemon's basic build endpoint. A failure here is
// fatal to the run.
func (b *Builder) Build(ctx context.Context, dir, imageRef string) error {
	descriptor, err := vcs.DescriptorName(dir)
	if err != nil {
		return err
	}

	if engine.BuildxAvailable(ctx, b.Runner) {
		b.Log.Info("building image with extended builder", "image", imageRef)
		return b.buildx(ctx, dir, descriptor, imageRef)
	}
	b.Log.Warn("extended builder unavailable, using basic builder")
	return b.basic(ctx, dir, descriptor, imageRef)
}

func (b *Builder) buildx(ctx context.Context, dir, descriptor, imageRef string) error {
	args := []string{"buildx", "build", "--load", "-f", descriptor, "-t", imageRef}
	if b.Verbose {
		args = append(args, "--progress", "plain")
	}
	args = append(args, ".")
	if err := b.Runner.Run(ctx, dir, "docker", args...); err != nil {
		return fmt.Errorf("build image %s: %w", imageRef, err)
	}
	b.Log.Success("image built", "image", imageRef)
	return nil
}

func (b *Builder) basic(ctx context.Context, dir, descriptor, imageRef string) error {
	client, err := b.Docker()
	if err != nil {
		return err
	}

	buildContext, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("tar build context: %w", err)
	}
	defer buildContext.Close()

	resp, err := client.ImageBuild(ctx, buildContext, buildtypes.ImageBuildOptions{
		Tags:       []string{imageRef},
		Dockerfile: descriptor,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("build image %s: %w", imageRef, err)
	}
	defer resp.Body.Close()

	// The stream carries build errors as messages; draining it through the
	// jsonmessage decoder surfaces them as errors.
	fd := os.Stdout.Fd()
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, b.Log.CommandSink(), fd, interaction.IsTerminal(os.Stdout), nil); err != nil {
		return fmt.Errorf("build image %s: %w", imageRef, err)
	}
	b.Log.Success("image built", "image", imageRef)
	return nil
}
