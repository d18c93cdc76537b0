// Package output renders check results for terminals and machine
// consumers. The console renderer styles output with lipgloss when the
// destination is a capable terminal; JSON, SARIF, and Checkstyle
// renderers serve CI pipelines and editor integrations.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects a result renderer
type Format int

const (
	// FormatAuto picks terminal or text based on the destination
	FormatAuto Format = iota
	// FormatTerminal renders styled console output
	FormatTerminal
	// FormatText renders plain console output
	FormatText
	// FormatJSON renders machine-readable JSON
	FormatJSON
	// FormatSARIF renders SARIF 2.1.0 for code-scanning uploads
	FormatSARIF
	// FormatCheckstyle renders Checkstyle XML for legacy CI plugins
	FormatCheckstyle
)

// String returns the canonical name of the format
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	case FormatCheckstyle:
		return "checkstyle"
	default:
		return "unknown"
	}
}

// ParseFormat parses a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "checkstyle":
		return FormatCheckstyle, nil
	default:
		return FormatAuto, fmt.Errorf("unknown format: %s", s)
	}
}

// DetectFormat resolves FormatAuto for the given destination: styled
// output only for a color-capable terminal with NO_COLOR unset.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve maps f to a concrete format for output, resolving FormatAuto
func Resolve(f Format, output *os.File) Format {
	if f == FormatAuto {
		return DetectFormat(output)
	}
	return f
}
