// Where: internal/command/error_helpers.go
// What: Error to exit code mapping.
// Why: Keep the first-failure-aborts policy explicit instead of a process-wide trap.
package command

import (
	"errors"

	"github.com/graylanquantum/shipit/internal/infra/installer"
	"github.com/graylanquantum/shipit/internal/infra/ui"
)

// exitCode converts a flow result into the process exit status. The
// re-login condition is a clean exit: the operator reruns after starting a
// new session. Every other error is fatal and points at the run log.
func exitCode(log *ui.Logger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, installer.ErrRelogin):
		log.Warn(err.Error())
		return 0
	case errors.Is(err, installer.ErrPrecondition):
		log.Error(err.Error())
		return 2
	default:
		log.Error("run failed", "err", err, "log", log.Path())
		return 1
	}
}
