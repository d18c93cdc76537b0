package rules

import (
	"fmt"

	"github.com/treelint/treelint/pkg/types"
)

// Rule names for the forbidden checks
const (
	RuleForbiddenPath = "forbidden-path"
	RuleForbiddenName = "forbidden-name"
)

// checkForbiddenPaths flags every entry whose relative path matches a
// forbidden pattern.
func checkForbiddenPaths(ctx *CheckContext) {
	for _, pattern := range ctx.Config.Rules.ForbiddenPaths {
		for _, e := range ctx.Entries {
			if !ctx.Match(pattern, e.RelPath) {
				continue
			}
			ctx.AddViolation(types.Violation{
				Path:     e.RelPath,
				Rule:     RuleForbiddenPath,
				Message:  fmt.Sprintf("path matches forbidden pattern %q", pattern),
				Severity: ctx.Severity(),
				Expected: pattern,
			})
		}
	}
}

// checkForbiddenNames flags every entry whose basename matches a
// forbidden pattern, at any depth.
func checkForbiddenNames(ctx *CheckContext) {
	for _, pattern := range ctx.Config.Rules.ForbiddenNames {
		for _, e := range ctx.Entries {
			if !ctx.Match(pattern, Basename(e.RelPath)) {
				continue
			}
			ctx.AddViolation(types.Violation{
				Path:     e.RelPath,
				Rule:     RuleForbiddenName,
				Message:  fmt.Sprintf("name matches forbidden pattern %q", pattern),
				Severity: ctx.Severity(),
				Expected: pattern,
			})
		}
	}
}
