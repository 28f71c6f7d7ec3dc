// Where: internal/infra/vcs/fetcher.go
// What: Source checkout management.
// Why: Produce a fresh validated clone for every build-triggering run.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/graylanquantum/shipit/internal/infra/ui"
)

// descriptorNames are the build descriptors recognized at a checkout root.
var descriptorNames = []string{"Dockerfile", "Containerfile"}

// Fetcher clones the source repository, replacing any prior checkout.
type Fetcher struct {
	Log *ui.Logger
}

// Fetch removes a stale checkout at dir, clones url fresh, and validates
// that a build descriptor exists at the checkout root.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove stale checkout: %w", err)
	}
	f.Log.Info("cloning repository", "url", url, "dir", dir)
	if _, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      url,
		Progress: f.Log.CommandSink(),
	}); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}

	descriptor, err := DescriptorName(dir)
	if err != nil {
		return err
	}
	f.Log.Success("repository ready", "descriptor", descriptor)
	return nil
}

// DescriptorName returns the build descriptor found at the checkout root,
// or an error when none of the recognized names exists.
func DescriptorName(dir string) (string, error) {
	for _, name := range descriptorNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return name, nil
		}
	}
	return "", fmt.Errorf("no build descriptor (%v) at checkout root %s", descriptorNames, dir)
}

// HasMetadata reports whether dir carries version-control metadata.
func HasMetadata(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, git.GitDirName))
	return err == nil
}
