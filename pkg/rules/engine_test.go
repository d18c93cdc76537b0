// Test Type: Unit Test
// Description: Tests for the cross-cutting structural rules

package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelint/treelint/pkg/rules"
	"github.com/treelint/treelint/pkg/types"
)

func TestCheck_ForbiddenPaths(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			ForbiddenPaths: []string{"src/legacy/**"},
		},
	}

	result := rules.Check(cfg, entriesFor("src/legacy/old.ts", "src/new.ts"))

	require.Len(t, result.Violations, 2)
	assert.Equal(t, "src/legacy", result.Violations[0].Path)
	assert.Equal(t, rules.RuleForbiddenPath, result.Violations[0].Rule)
	assert.Equal(t, "src/legacy/old.ts", result.Violations[1].Path)
	assert.Equal(t, types.SeverityError, result.Violations[1].Severity)
}

func TestCheck_ForbiddenNames(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeWarn,
		Rules: types.RuleSet{
			ForbiddenNames: []string{"*.tmp", "Thumbs.db"},
		},
	}

	result := rules.Check(cfg, entriesFor("a/b/scratch.tmp", "img/Thumbs.db", "keep.txt"))

	paths := violationPaths(result.Violations)
	assert.ElementsMatch(t, []string{"a/b/scratch.tmp", "img/Thumbs.db"}, paths)
	for _, v := range result.Violations {
		assert.Equal(t, types.SeverityWarning, v.Severity)
	}
}

func TestCheck_DependencyCompanion(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Dependencies: map[string][]string{
				"src/components/*.tsx": {"src/components/*.stories.tsx"},
			},
		},
	}

	result := rules.Check(cfg, entriesFor(
		"src/components/Button.tsx",
		"src/components/Button.stories.tsx",
		"src/components/Input.tsx",
	))

	// Button has its story; Input does not. The stories file itself also
	// matches the source pattern and requires a .stories.stories variant.
	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "src/components/Input.tsx")
	assert.NotContains(t, paths, "src/components/Button.tsx")

	for _, v := range result.Violations {
		if v.Path == "src/components/Input.tsx" {
			assert.Equal(t, rules.RuleDependency, v.Rule)
			assert.Equal(t, "src/components/Input.stories.tsx", v.Expected)
		}
	}
}

func TestCheck_DependencyLiteralCompanion(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Dependencies: map[string][]string{
				"Dockerfile": {".dockerignore"},
			},
		},
	}

	t.Run("companion_present", func(t *testing.T) {
		result := rules.Check(cfg, entriesFor("Dockerfile", ".dockerignore"))
		assert.Empty(t, result.Violations)
	})

	t.Run("companion_missing", func(t *testing.T) {
		result := rules.Check(cfg, entriesFor("Dockerfile"))
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "Dockerfile", result.Violations[0].Path)
		assert.Equal(t, ".dockerignore", result.Violations[0].Expected)
	})
}

func TestCheck_MirrorRule(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Mirrors: []types.MirrorRule{
				{Source: "src/**/*.ts", Target: "tests/**/*.test.ts"},
			},
		},
	}

	result := rules.Check(cfg, entriesFor(
		"src/util/format.ts",
		"tests/util/format.test.ts",
		"src/missing.ts",
	))

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "src/missing.ts", v.Path)
	assert.Equal(t, rules.RuleMirror, v.Rule)
	assert.Equal(t, "tests/missing.test.ts", v.Expected)
}

func TestCheck_WhenRule(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			When: []types.WhenRule{
				{If: "go.mod", Require: []string{"go.sum"}, Forbid: []string{"package-lock.json"}},
			},
		},
	}

	t.Run("trigger_absent", func(t *testing.T) {
		result := rules.Check(cfg, entriesFor("package.json", "package-lock.json"))
		assert.Empty(t, result.Violations)
	})

	t.Run("requirement_missing", func(t *testing.T) {
		result := rules.Check(cfg, entriesFor("go.mod"))
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "go.mod", result.Violations[0].Path)
		assert.Equal(t, rules.RuleWhen, result.Violations[0].Rule)
		assert.Equal(t, "go.sum", result.Violations[0].Expected)
	})

	t.Run("forbidden_present", func(t *testing.T) {
		result := rules.Check(cfg, entriesFor("go.mod", "go.sum", "package-lock.json"))
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "package-lock.json", result.Violations[0].Path)
	})
}

func TestCheck_MatchRule(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeWarn,
		Rules: types.RuleSet{
			Match: []types.MatchRule{
				{
					Name:    "component-dirs",
					Pattern: "src/components/*",
					Require: []string{"index.ts"},
					Forbid:  []string{"*.css"},
				},
			},
		},
	}

	result := rules.Check(cfg, entriesFor(
		"src/components/button/index.ts",
		"src/components/modal/modal.tsx",
		"src/components/modal/style.css",
	))

	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "src/components/modal", "missing required index.ts")
	assert.Contains(t, paths, "src/components/modal/style.css", "forbidden css")
	assert.NotContains(t, paths, "src/components/button")
}

func TestCheck_MatchRuleExclude(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeWarn,
		Rules: types.RuleSet{
			Match: []types.MatchRule{
				{
					Pattern: "src/components/*",
					Exclude: []string{"src/components/legacy"},
					Require: []string{"index.ts"},
				},
			},
		},
	}

	result := rules.Check(cfg, entriesFor("src/components/legacy/junk.tsx"))

	// The excluded directory is out of scope, so the pattern matched
	// nothing and a diagnostic warning is emitted instead
	require.Len(t, result.Violations, 1)
	assert.Equal(t, types.SeverityWarning, result.Violations[0].Severity)
	assert.Contains(t, result.Violations[0].Message, "matched no directories")
}

func TestCheck_MatchRuleNothingMatchedIsAlwaysWarning(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Match: []types.MatchRule{{Pattern: "packages/*"}},
		},
	}

	result := rules.Check(cfg, entriesFor("src/main.go"))

	require.Len(t, result.Violations, 1)
	assert.Equal(t, types.SeverityWarning, result.Violations[0].Severity,
		"diagnostic stays a warning even in strict mode")
}

func TestCheck_MatchRuleStrictCoverage(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Match: []types.MatchRule{
				{
					Pattern: "lib/*",
					Require: []string{"index.ts"},
					Allow:   []string{"*.md"},
				},
			},
		},
	}

	result := rules.Check(cfg, entriesFor(
		"lib/core/index.ts",
		"lib/core/README.md",
		"lib/core/stray.json",
	))

	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "lib/core/stray.json")
	assert.NotContains(t, paths, "lib/core/index.ts")
	assert.NotContains(t, paths, "lib/core/README.md")
}

func TestCheck_MatchRuleNestedRequireCoversItsSubtree(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeStrict,
		Rules: types.RuleSet{
			Match: []types.MatchRule{
				{
					Pattern: "packages/*",
					Require: []string{"src/index.ts"},
					Allow:   []string{"package.json"},
				},
			},
		},
	}

	result := rules.Check(cfg, entriesFor(
		"packages/api/package.json",
		"packages/api/src/index.ts",
		"packages/api/stray.lock",
	))

	paths := violationPaths(result.Violations)
	assert.NotContains(t, paths, "packages/api/src", "a satisfied nested require covers its own directory")
	assert.Contains(t, paths, "packages/api/stray.lock")
}

func TestCheck_MatchRuleCaseChecksAreIndependent(t *testing.T) {
	cfg := &types.Config{
		Mode: types.ModeWarn,
		Rules: types.RuleSet{
			Match: []types.MatchRule{
				{
					Pattern:   "src/*",
					Case:      types.CaseKebab,
					ChildCase: types.CasePascal,
				},
			},
		},
	}

	result := rules.Check(cfg, entriesFor("src/My_Module/lower.ts"))

	// The directory's own case and its child's case both fire
	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "src/My_Module")
	assert.Contains(t, paths, "src/My_Module/lower.ts")
}

func TestCheck_MatchRuleDeduplicatesAcrossRules(t *testing.T) {
	rule := types.MatchRule{
		Pattern: "pkg/*",
		Require: []string{"doc.go"},
	}
	cfg := &types.Config{
		Mode:  types.ModeWarn,
		Rules: types.RuleSet{Match: []types.MatchRule{rule, rule}},
	}

	result := rules.Check(cfg, entriesFor("pkg/api/handler.go"))

	count := 0
	for _, v := range result.Violations {
		if v.Path == "pkg/api" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCheck_IgnorePathsInvisibleToAllRules(t *testing.T) {
	cfg := &types.Config{
		Mode:        types.ModeStrict,
		IgnorePaths: []string{"vendor/**", "vendor"},
		Rules: types.RuleSet{
			ForbiddenNames: []string{"*.exe"},
		},
	}
	cfg.Layout = dir(child("main.go", file()))

	result := rules.Check(cfg, entriesFor("main.go", "vendor/tool.exe"))
	assert.Empty(t, result.Violations)
}
