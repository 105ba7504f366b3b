package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "Y")
	Accepted bool
	// Cancelled is true if reading the answer failed
	Cancelled bool
}

// Confirm asks a yes/no question. It returns immediately with
// Accepted=false when interactive is false.
//
// The prompt defaults to "No" when the user presses Enter without input.
// Valid inputs: "y", "Y", "yes", "Yes", "YES" for acceptance; anything else declines.
func Confirm(writer io.Writer, reader io.Reader, question string, interactive bool) PromptResult {
	if !interactive {
		return PromptResult{Accepted: false}
	}

	fmt.Fprintf(writer, "? %s [y/N] ", question)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		// EOF or error - treat as cancelled
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error - treat as decline (user pressed Ctrl+D)
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
