// Where: internal/infra/registry/reference.go
// What: Remote image reference composition.
// Why: Build fully qualified push targets and reject malformed ones early.
package registry

import (
	"fmt"

	"github.com/distribution/reference"

	"github.com/graylanquantum/shipit/internal/meta"
)

// RemoteRef composes the fully qualified push target for a repository path
// ("namespace/name") and tag, validating it as a normalized reference.
func RemoteRef(repository, tag string) (string, error) {
	ref := fmt.Sprintf("%s/%s:%s", meta.DefaultRegistry, repository, tag)
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return ref, nil
}
