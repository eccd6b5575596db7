package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/quillvault/quill/internal/ui"
)

// confirmApply asks the user to approve the destructive part of a migration
// plan. Only an interactive terminal can answer: JSON mode and piped
// stdin/stdout decline, which makes --yes the only way to apply
// non-deterministic plans from scripts.
func confirmApply(message string) bool {
	if isJSONOutput() {
		return false
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return false
	}

	fmt.Printf("%s %s ", message, ui.Hint("[y/N]"))
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
