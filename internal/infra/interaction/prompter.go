// Where: internal/infra/interaction/prompter.go
// What: Interactive prompts using the huh library.
// Why: Keyboard input with suggestions and echo-free secret entry.
package interaction

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/graylanquantum/shipit/internal/infra/ui"
)

var runInputPrompt = func(title, suggestion string, echo huh.EchoMode, input *string) error {
	field := huh.NewInput().
		Title(title).
		EchoMode(echo).
		Value(input)
	if suggestion != "" {
		field = field.Placeholder(suggestion).Suggestions([]string{suggestion})
	}
	return field.Run()
}

var readPassword = func(fd int) ([]byte, error) {
	return term.ReadPassword(fd)
}

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Input(title, suggestion string) (string, error) {
	var input string
	if err := runInputPrompt(title, suggestion, huh.EchoModeNormal, &input); err != nil {
		return "", fmt.Errorf("prompt input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return suggestion, nil
	}
	return input, nil
}

func (p HuhPrompter) Secret(title string) (ui.Secret, error) {
	var input string
	err := runInputPrompt(title, "", huh.EchoModePassword, &input)
	if err == nil {
		return ui.NewSecret(strings.TrimSpace(input)), nil
	}
	// huh needs a full TUI; fall back to a raw echo-free read when stdin
	// is still a terminal (e.g. dumb terminals over ssh).
	if IsTerminal(os.Stdin) {
		fmt.Fprintf(os.Stderr, "%s: ", title)
		raw, rerr := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if rerr != nil {
			return ui.Secret{}, fmt.Errorf("read secret: %w", rerr)
		}
		return ui.NewSecret(strings.TrimSpace(string(raw))), nil
	}
	return ui.Secret{}, fmt.Errorf("prompt secret: %w", err)
}
