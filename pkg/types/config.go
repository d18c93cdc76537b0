package types

import "time"

// Mode selects how violations are graded
type Mode string

const (
	// ModeStrict grades violations as errors and flags unexpected entries
	ModeStrict Mode = "strict"

	// ModeWarn grades violations as warnings
	ModeWarn Mode = "warn"
)

// CaseStyle is a naming convention validated against a basename with its
// extension stripped. The empty value means unconstrained.
type CaseStyle string

const (
	CaseAny    CaseStyle = ""
	CaseKebab  CaseStyle = "kebab-case"
	CaseSnake  CaseStyle = "snake_case"
	CaseCamel  CaseStyle = "camelCase"
	CasePascal CaseStyle = "PascalCase"
)

// ScanOptions tunes the filesystem scanner
type ScanOptions struct {
	// MaxDepth bounds how deep directories may nest below the root
	MaxDepth int

	// MaxFiles bounds the total number of entries scanned
	MaxFiles int

	// Timeout bounds the whole walk in wall-clock time
	Timeout time.Duration

	// Concurrency limits parallel sibling-directory walks
	Concurrency int

	// FollowSymlinks resolves and descends into symlinked directories
	FollowSymlinks bool

	// UseIgnoreFiles honors per-directory .treelintignore files
	UseIgnoreFiles bool
}

// MirrorRule requires that every file matching Source has a counterpart
// matching Target, with wildcard captures substituted
type MirrorRule struct {
	Source string
	Target string
}

// WhenRule is a conditional requirement: if any entry matches If, every
// pattern in Require must match something and no entry may match a
// pattern in Forbid
type WhenRule struct {
	If      string
	Require []string
	Forbid  []string
}

// MatchRule applies a directory contract to every directory whose
// relative path satisfies Pattern
type MatchRule struct {
	// Name identifies the rule in violations; defaults to Pattern
	Name string

	Pattern string

	// Exclude removes matched directories from the rule's scope
	Exclude []string

	// Require lists patterns that must each match at least one entry
	Require []string

	// Forbid lists patterns no entry may match
	Forbid []string

	// Allow lists additional patterns tolerated in strict mode
	Allow []string

	// Case constrains the matched directory's own name
	Case CaseStyle

	// ChildCase constrains the names of the directory's direct children
	ChildCase CaseStyle
}

// RuleSet groups the cross-cutting structural rules
type RuleSet struct {
	ForbiddenPaths []string
	ForbiddenNames []string

	// Dependencies maps a source pattern to companion patterns that must
	// exist for every file matching the source
	Dependencies map[string][]string

	Mirrors []MirrorRule
	When    []WhenRule
	Match   []MatchRule
}

// Config is the full, already-merged configuration for one check run
type Config struct {
	Mode Mode

	// Ignore patterns are applied by the scanner; matching subtrees are
	// never walked
	Ignore []string

	// IgnorePaths patterns are applied by the rule engine; matching
	// entries are invisible to every rule, including the strict sweep
	IgnorePaths []string

	Layout LayoutNode

	Rules RuleSet

	Scan ScanOptions
}

// SeverityFor returns the severity the configured mode assigns
func (c *Config) SeverityFor() Severity {
	if c.Mode == ModeWarn {
		return SeverityWarning
	}
	return SeverityError
}
