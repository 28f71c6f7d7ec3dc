// Where: internal/command/push.go
// What: Push command flow.
// Why: Publish a previously built image without re-running fetch or build.
package command

import (
	"context"

	"github.com/graylanquantum/shipit/internal/infra/config"
	"github.com/graylanquantum/shipit/internal/infra/ui"
)

// runPush executes the 'push' command: installer, then the publisher's
// credential, authentication, and tag-and-push stages. Local image
// resolution (including the repository-name fallback) happens inside the
// publish step.
func runPush(ctx context.Context, cli CLI, cfg *config.Config, deps Dependencies, log *ui.Logger) error {
	if err := deps.Install(ctx, cfg, log); err != nil {
		return err
	}
	return deps.Publish(ctx, cfg, log, PublishOptions{
		DefaultTag:   cfg.ImageTag,
		SaveDefaults: !cli.NoSave,
	})
}
