package rules

import (
	"fmt"

	"github.com/treelint/treelint/pkg/matcher"
	"github.com/treelint/treelint/pkg/types"
)

// RuleMirror is the rule name mirrored-file violations carry
const RuleMirror = "mirror"

// checkMirrors verifies that every file matching a mirror rule's source
// pattern has a counterpart at the substituted target path.
func checkMirrors(ctx *CheckContext) {
	for _, rule := range ctx.Config.Rules.Mirrors {
		cp, err := matcher.CompileCapture(rule.Source)
		if err != nil {
			ctx.addPatternDiagnostic(RuleMirror, rule.Source, err)
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

			resolved, err := matcher.SubstituteWildcards(rule.Target, captures)
			if err != nil {
				ctx.addPatternDiagnostic(RuleMirror, rule.Target, err)
				break
			}

			if ctx.Exists(resolved) {
				continue
			}

			ctx.AddViolation(types.Violation{
				Path:     e.RelPath,
				Rule:     RuleMirror,
				Message:  fmt.Sprintf("missing mirror %q", resolved),
				Severity: ctx.Severity(),
				Expected: resolved,
				Suggestions: []string{
					fmt.Sprintf("create %s", resolved),
				},
			})
		}
	}
}
