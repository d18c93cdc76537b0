package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/treelint/treelint/pkg/types"
)

var (
	styleError = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"})
	styleWarning = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"})
	stylePath = lipgloss.NewStyle().Bold(true)
	styleRule = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"})
	styleHint = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFD7"})
	styleOK = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"})
)

// ConsoleRenderer writes human-readable output, optionally styled
type ConsoleRenderer struct {
	styled bool
}

// NewConsoleRenderer returns a console renderer. With styled false the
// output is plain text suitable for pipes and logs.
func NewConsoleRenderer(styled bool) *ConsoleRenderer {
	return &ConsoleRenderer{styled: styled}
}

// Render writes every violation and a closing summary line
func (r *ConsoleRenderer) Render(w io.Writer, result *types.CheckResult) error {
	for _, v := range result.Violations {
		if err := r.renderViolation(w, v); err != nil {
			return err
		}
	}
	return r.renderSummary(w, result.Summary)
}

func (r *ConsoleRenderer) renderViolation(w io.Writer, v types.Violation) error {
	label := string(v.Severity)
	sev := styleError
	if v.Severity == types.SeverityWarning {
		sev = styleWarning
	}

	line := fmt.Sprintf("%s  %s  %s %s",
		r.apply(sev, label),
		r.apply(stylePath, v.Path),
		v.Message,
		r.apply(styleRule, "["+v.Rule+"]"))
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if v.Expected != "" {
		if _, err := fmt.Fprintf(w, "         expected: %s\n", v.Expected); err != nil {
			return err
		}
	}
	if v.Actual != "" {
		if _, err := fmt.Fprintf(w, "         actual:   %s\n", v.Actual); err != nil {
			return err
		}
	}
	for _, s := range v.Suggestions {
		if _, err := fmt.Fprintf(w, "         %s\n", r.apply(styleHint, "hint: "+s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *ConsoleRenderer) renderSummary(w io.Writer, s types.Summary) error {
	if s.Total == 0 {
		_, err := fmt.Fprintf(w, "%s %d files checked, no violations\n",
			r.apply(styleOK, "ok:"), s.FilesChecked)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d violations (%s, %s) in %d files\n",
		s.Total,
		r.apply(styleError, fmt.Sprintf("%d errors", s.Errors)),
		r.apply(styleWarning, fmt.Sprintf("%d warnings", s.Warnings)),
		s.FilesChecked)
	return err
}

func (r *ConsoleRenderer) apply(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}
