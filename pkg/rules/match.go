package rules

import (
	"fmt"
	"strings"

	"github.com/treelint/treelint/pkg/types"
)

// RuleMatch is the rule name directory-contract violations carry
const RuleMatch = "match"

// checkMatchRules applies each pattern-scoped directory contract to every
// directory whose relative path satisfies its pattern. Violations that
// different rules produce for the same path with the same message are
// deduplicated.
func checkMatchRules(ctx *CheckContext) {
	if len(ctx.Config.Rules.Match) == 0 {
		return
	}

	tree := newDirTree(ctx.Entries)
	seen := make(map[string]struct{})

	add := func(v types.Violation) {
		key := v.Path + "\x00" + v.Message
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		ctx.AddViolation(v)
	}

	for _, rule := range ctx.Config.Rules.Match {
		name := rule.Name
		if name == "" {
			name = rule.Pattern
		}

		dirs := tree.findDirs(ctx, rule.Pattern, rule.Exclude)
		if len(dirs) == 0 {
			// An unmatched pattern usually signals a typo, so it is
			// surfaced instead of silently doing nothing.
			add(types.Violation{
				Path:     rule.Pattern,
				Rule:     RuleMatch,
				Message:  fmt.Sprintf("rule %q matched no directories", name),
				Severity: types.SeverityWarning,
			})
			continue
		}

		for _, dir := range dirs {
			checkMatchedDir(ctx, add, rule, name, dir)
		}
	}
}

// checkMatchedDir applies one contract to one directory. Every check is
// independent: require, forbid, strict coverage, directory case and
// child case can each produce their own violations.
func checkMatchedDir(ctx *CheckContext, add func(types.Violation), rule types.MatchRule, name string, dir string) {
	under := entriesUnder(ctx, dir)

	for _, req := range rule.Require {
		if matchesAnyPath(ctx, req, under) {
			continue
		}
		add(types.Violation{
			Path:     dir,
			Rule:     RuleMatch,
			Message:  fmt.Sprintf("missing required entry matching %q", req),
			Severity: ctx.Severity(),
			Expected: req,
		})
	}

	for _, forbid := range rule.Forbid {
		for _, rel := range under {
			if !ctx.Match(forbid, rel) {
				continue
			}
			add(types.Violation{
				Path:     dir + "/" + rel,
				Rule:     RuleMatch,
				Message:  fmt.Sprintf("matches forbidden pattern %q", forbid),
				Severity: ctx.Severity(),
			})
		}
	}

	if ctx.Config.Mode == types.ModeStrict {
		allowed := make([]string, 0, len(rule.Require)+len(rule.Allow))
		allowed = append(allowed, rule.Require...)
		allowed = append(allowed, rule.Allow...)

		for _, childRel := range ctx.ChildrenOf(dir) {
			base := Basename(childRel)
			// With no require and no allow patterns every child is
			// rejected.
			if len(allowed) > 0 && childCovered(ctx, allowed, base) {
				continue
			}
			add(types.Violation{
				Path:     childRel,
				Rule:     RuleMatch,
				Message:  fmt.Sprintf("entry not covered by rule %q", name),
				Severity: ctx.Severity(),
				Actual:   base,
			})
		}
	}

	// The directory's own case and its children's cases are distinct
	// checks; both can fire.
	if rule.Case != types.CaseAny && !ValidCase(Basename(dir), rule.Case) {
		add(types.Violation{
			Path:     dir,
			Rule:     RuleMatch,
			Message:  fmt.Sprintf("directory name is not %s", rule.Case),
			Severity: ctx.Severity(),
			Expected: string(rule.Case),
			Actual:   Basename(dir),
		})
	}

	if rule.ChildCase != types.CaseAny {
		for _, childRel := range ctx.ChildrenOf(dir) {
			name := Basename(childRel)
			if ValidCase(name, rule.ChildCase) {
				continue
			}
			add(types.Violation{
				Path:     childRel,
				Rule:     RuleMatch,
				Message:  fmt.Sprintf("name is not %s", rule.ChildCase),
				Severity: ctx.Severity(),
				Expected: string(rule.ChildCase),
				Actual:   name,
			})
		}
	}
}

// entriesUnder returns the paths of all entries below dir, relative to
// dir itself, so contract patterns read naturally ("index.ts",
// "**/*.test.ts").
func entriesUnder(ctx *CheckContext, dir string) []string {
	prefix := dir + "/"
	var under []string
	for _, e := range ctx.Entries {
		if strings.HasPrefix(e.RelPath, prefix) {
			under = append(under, e.RelPath[len(prefix):])
		}
	}
	return under
}

// childCovered reports whether any contract pattern covers a direct
// child: either the pattern matches the child's name, or its first
// segment does, so a requirement like "sub/index.ts" covers the "sub"
// directory it reaches into.
func childCovered(ctx *CheckContext, patterns []string, base string) bool {
	for _, p := range patterns {
		if ctx.Match(p, base) {
			return true
		}
		if head, _, ok := strings.Cut(p, "/"); ok && ctx.Match(head, base) {
			return true
		}
	}
	return false
}

func matchesAnyPath(ctx *CheckContext, pattern string, paths []string) bool {
	for _, p := range paths {
		if ctx.Match(pattern, p) {
			return true
		}
	}
	return false
}
