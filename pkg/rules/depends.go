package rules

import (
	"fmt"
	"sort"

	"github.com/treelint/treelint/pkg/matcher"
	"github.com/treelint/treelint/pkg/types"
)

// RuleDependency is the rule name companion-file violations carry
const RuleDependency = "dependency"

// checkDependencies verifies that every file matching a source pattern
// has each of its required companions. Wildcard captures from the source
// are substituted into the companion patterns, so "src/*.ts" can require
// "src/*.test.ts" per file.
func checkDependencies(ctx *CheckContext) {
	sources := make([]string, 0, len(ctx.Config.Rules.Dependencies))
	for source := range ctx.Config.Rules.Dependencies {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		cp, err := matcher.CompileCapture(source)
		if err != nil {
			ctx.addPatternDiagnostic(RuleDependency, source, err)
			continue
		}

		for _, e := range ctx.Entries {
			if e.IsDir {
				continue
			}
			captures, ok := cp.Captures(e.RelPath)
			if !ok {
				continue
			}

			for _, companion := range ctx.Config.Rules.Dependencies[source] {
				requireCompanion(ctx, RuleDependency, e.RelPath, companion, captures)
			}
		}
	}
}

// requireCompanion resolves a companion pattern against the captures and
// checks that something satisfies it.
func requireCompanion(ctx *CheckContext, rule, source, companion string, captures []string) {
	resolved, err := matcher.SubstituteWildcards(companion, captures)
	if err != nil {
		ctx.addPatternDiagnostic(rule, companion, err)
		return
	}

	if ctx.Exists(resolved) {
		return
	}

	ctx.AddViolation(types.Violation{
		Path:     source,
		Rule:     rule,
		Message:  fmt.Sprintf("requires companion %q", resolved),
		Severity: ctx.Severity(),
		Expected: resolved,
		Suggestions: []string{
			fmt.Sprintf("create %s", resolved),
		},
	})
}

// addPatternDiagnostic records a configuration-shaped problem as an
// always-warning violation instead of guessing at intent.
func (c *CheckContext) addPatternDiagnostic(rule, pattern string, err error) {
	c.AddViolation(types.Violation{
		Path:     pattern,
		Rule:     rule,
		Message:  fmt.Sprintf("pattern cannot be applied: %v", err),
		Severity: types.SeverityWarning,
	})
}
