// Where: internal/infra/engine/fake_test.go
// What: Shared fakes for engine tests.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
)

type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	fails   map[string]bool
}

func (f *fakeRunner) record(name string, args []string) string {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	return name + " " + fmt.Sprint(args)
}

func (f *fakeRunner) key(name string, args []string) string {
	key := name
	for _, a := range args {
		key += " " + a
	}
	return key
}

func (f *fakeRunner) result(name string, args []string) error {
	if f.fails[f.key(name, args)] {
		return fmt.Errorf("run %s: exit status 1", name)
	}
	return nil
}

func (f *fakeRunner) Run(_ context.Context, _, name string, args ...string) error {
	f.record(name, args)
	return f.result(name, args)
}

func (f *fakeRunner) RunOutput(_ context.Context, _, name string, args ...string) ([]byte, error) {
	f.record(name, args)
	if err := f.result(name, args); err != nil {
		return nil, err
	}
	return []byte(f.outputs[f.key(name, args)]), nil
}

func (f *fakeRunner) RunQuiet(_ context.Context, _, name string, args ...string) error {
	f.record(name, args)
	return f.result(name, args)
}

func (f *fakeRunner) RunInput(_ context.Context, _ string, _ io.Reader, name string, args ...string) error {
	f.record(name, args)
	return f.result(name, args)
}

type fakeDockerClient struct {
	pingErr error
	images  []image.Summary
	listErr error
}

func (f *fakeDockerClient) Ping(_ context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeDockerClient) ImageList(_ context.Context, _ image.ListOptions) ([]image.Summary, error) {
	return f.images, f.listErr
}

func (f *fakeDockerClient) ImageBuild(_ context.Context, _ io.Reader, _ build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	return build.ImageBuildResponse{}, nil
}
