package types

import "time"

// Severity indicates how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation describes one deviation from the configured structure
type Violation struct {
	// Path is the relative path the violation applies to
	Path string `json:"path"`

	// Rule is the name of the rule that produced the violation
	Rule string `json:"rule"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Severity is error or warning
	Severity Severity `json:"severity"`

	// Expected is the value the rule wanted, when applicable
	Expected string `json:"expected,omitempty"`

	// Actual is the value the rule found, when applicable
	Actual string `json:"actual,omitempty"`

	// Suggestions holds ordered remediation hints
	Suggestions []string `json:"suggestions,omitempty"`
}

// Summary aggregates the outcome of one check run
type Summary struct {
	Total        int           `json:"total"`
	Errors       int           `json:"errors"`
	Warnings     int           `json:"warnings"`
	FilesChecked int           `json:"filesChecked"`
	Duration     time.Duration `json:"duration"`
}

// CheckResult is the full outcome of one check run. It is produced once
// and immutable thereafter.
type CheckResult struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// HasErrors reports whether any violation carries error severity
func (r *CheckResult) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
