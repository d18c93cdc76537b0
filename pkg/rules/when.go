package rules

import (
	"fmt"

	"github.com/treelint/treelint/pkg/types"
)

// RuleWhen is the rule name conditional-requirement violations carry
const RuleWhen = "when"

// checkWhen enforces conditional requirements: when any entry matches a
// rule's If pattern, each Require pattern must match something and no
// entry may match a Forbid pattern.
func checkWhen(ctx *CheckContext) {
	for _, rule := range ctx.Config.Rules.When {
		trigger := ""
		for _, e := range ctx.Entries {
			if ctx.Match(rule.If, e.RelPath) {
				trigger = e.RelPath
				break
			}
		}
		if trigger == "" {
			continue
		}

		for _, req := range rule.Require {
			if anyEntryMatches(ctx, req) {
				continue
			}
			ctx.AddViolation(types.Violation{
				Path:     trigger,
				Rule:     RuleWhen,
				Message:  fmt.Sprintf("presence of %q requires an entry matching %q", rule.If, req),
				Severity: ctx.Severity(),
				Expected: req,
			})
		}

		for _, forbid := range rule.Forbid {
			for _, e := range ctx.Entries {
				if !ctx.Match(forbid, e.RelPath) {
					continue
				}
				ctx.AddViolation(types.Violation{
					Path:     e.RelPath,
					Rule:     RuleWhen,
					Message:  fmt.Sprintf("forbidden while an entry matches %q", rule.If),
					Severity: ctx.Severity(),
				})
			}
		}
	}
}

func anyEntryMatches(ctx *CheckContext, pattern string) bool {
	for _, e := range ctx.Entries {
		if ctx.Match(pattern, e.RelPath) {
			return true
		}
	}
	return false
}
