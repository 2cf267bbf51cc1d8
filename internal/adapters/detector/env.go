// Package detector decides whether the interactive browser can run.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the browse command.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive browser.
	ModeTUI
	// ModePlain forces a one-shot listing.
	ModePlain
)

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdin and stdout are terminals and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModePlain
	}
	return ModeTUI
}

// ResolveMode applies the user override flag to auto-detection.
// userFlag should be one of: "auto", "tui", "plain", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tui":
		return ModeTUI
	case "plain", "linear":
		return ModePlain
	default:
		return autoDetected
	}
}
