// Where: internal/infra/interaction/interaction.go
// What: Interactive primitives for CLI prompts and TTY detection.
// Why: Centralize user interaction so command handlers stay orchestration-only.
package interaction

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/graylanquantum/shipit/internal/infra/ui"
)

// Prompter defines the interface for interactive user input.
type Prompter interface {
	// Input asks for a value, offering suggestion as the default. An empty
	// answer returns the suggestion.
	Input(title, suggestion string) (string, error)
	// Secret asks for a credential with terminal echo disabled. The value
	// is returned opaque so it cannot reach the run log.
	Secret(title string) (ui.Secret, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
