// Test Type: Unit Test
// Description: Tests for the layout validator - recursive structure checking

package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelint/treelint/pkg/rules"
	"github.com/treelint/treelint/pkg/types"
)

func file(opts ...func(*types.NodeBase)) *types.FileNode {
	n := &types.FileNode{}
	for _, o := range opts {
		o(&n.NodeBase)
	}
	return n
}

func optional(nb *types.NodeBase) { nb.Optional = true }

func pattern(p string) func(*types.NodeBase) {
	return func(nb *types.NodeBase) { nb.Pattern = p }
}
func caseStyle(c types.CaseStyle) func(*types.NodeBase) {
	return func(nb *types.NodeBase) { nb.Case = c }
}

func dir(children ...types.DirChild) *types.DirNode {
	return &types.DirNode{Children: children}
}

func child(name string, node types.LayoutNode) types.DirChild {
	return types.DirChild{Name: name, Node: node}
}

func TestLayout_RequiredFileMissing(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("package.json", file()))

	result := rules.Check(cfg, entriesFor("README.md"))

	require.Len(t, result.Violations, 2)
	// Violations are sorted by path
	assert.Equal(t, "README.md", result.Violations[0].Path)
	assert.Equal(t, "unexpected file", result.Violations[0].Message)
	assert.Equal(t, "package.json", result.Violations[1].Path)
	assert.Equal(t, "required file missing", result.Violations[1].Message)
}

func TestLayout_StrictModeUnexpectedFile(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("package.json", file()))

	result := rules.Check(cfg, entriesFor("package.json", "unexpected.ts"))

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "unexpected.ts", result.Violations[0].Path)
	assert.Equal(t, rules.RuleLayout, result.Violations[0].Rule)
}

func TestLayout_WarnModeSkipsSweep(t *testing.T) {
	cfg := &types.Config{Mode: types.ModeWarn}
	cfg.Layout = dir(child("package.json", file()))

	result := rules.Check(cfg, entriesFor("package.json", "unexpected.ts"))
	assert.Empty(t, result.Violations)
}

func TestLayout_OptionalFileAbsent(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("LICENSE", file(optional)))

	result := rules.Check(cfg, entriesFor())
	assert.Empty(t, result.Violations)
}

func TestLayout_FilePatternAndCaseAreIndependent(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("My_File.txt", file(pattern("*.md"), caseStyle(types.CaseKebab))))

	result := rules.Check(cfg, entriesFor("My_File.txt"))

	// Both the pattern check and the case check fire for the same entry
	require.Len(t, result.Violations, 2)
	for _, v := range result.Violations {
		assert.Equal(t, "My_File.txt", v.Path)
	}
}

func TestLayout_NestedDirectories(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(
		child("src", dir(
			child("index.ts", file()),
		)),
	)

	result := rules.Check(cfg, entriesFor("src/index.ts"))
	assert.Empty(t, result.Violations)
}

func TestLayout_MissingDirectory(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("src", dir(child("index.ts", file()))))

	result := rules.Check(cfg, entriesFor("README.md"))

	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "src")
	// An absent directory reports once; its children are not descended
	assert.NotContains(t, paths, "src/index.ts")
}

func TestLayout_StrictDirectoryFlagsUnknownChildren(t *testing.T) {
	cfg := &types.Config{Mode: types.ModeWarn}
	layout := dir(child("src", &types.DirNode{
		Children: []types.DirChild{{Name: "index.ts", Node: file()}},
		Strict:   true,
	}))
	cfg.Layout = layout

	result := rules.Check(cfg, entriesFor("src/index.ts", "src/rogue.ts"))

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "src/rogue.ts", result.Violations[0].Path)
	assert.Equal(t, "unexpected entry in strict directory", result.Violations[0].Message)
}

func TestLayout_StrictDirDoesNotDoubleReportInSweep(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("src", &types.DirNode{
		Children: []types.DirChild{{Name: "index.ts", Node: file()}},
		Strict:   true,
	}))

	result := rules.Check(cfg, entriesFor("src/index.ts", "src/rogue.ts"))

	count := 0
	for _, v := range result.Violations {
		if v.Path == "src/rogue.ts" {
			count++
		}
	}
	assert.Equal(t, 1, count, "strict dir and global sweep must not both report")
}

func TestLayout_ParamConsumesOneChild(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(
		types.DirChild{
			Name: "$module",
			Node: &types.ParamNode{Child: dir(child("index.ts", file()))},
			Meta: true,
		},
	)

	result := rules.Check(cfg, entriesFor("auth/index.ts", "billing/index.ts"))

	// One dynamic child consumed; the sibling and its contents are swept
	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "billing")
	assert.Contains(t, paths, "billing/index.ts")
	assert.NotContains(t, paths, "auth")
}

func TestLayout_ParamValidatesCaseBeforePatternSkip(t *testing.T) {
	cfg := &types.Config{Mode: types.ModeWarn}
	cfg.Layout = dir(
		types.DirChild{
			Name: "$module",
			Node: &types.ParamNode{
				NodeBase: types.NodeBase{Pattern: "*.ts", Case: types.CaseKebab},
			},
			Meta: true,
		},
	)

	// BadName.go fails the pattern, but its case violation must still be
	// reported
	result := rules.Check(cfg, entriesFor("BadName.go"))

	require.NotEmpty(t, result.Violations)
	assert.Equal(t, "BadName.go", result.Violations[0].Path)
	assert.Contains(t, result.Violations[0].Message, "kebab-case")
}

func TestLayout_ManyCountBounds(t *testing.T) {
	t.Run("below_minimum", func(t *testing.T) {
		cfg := &types.Config{Mode: types.ModeWarn}
		cfg.Layout = dir(
			types.DirChild{
				Name: "$routes",
				Node: &types.ManyNode{
					NodeBase: types.NodeBase{Pattern: "*.ts"},
					Min:      2,
					Max:      2,
				},
				Meta: true,
			},
		)

		result := rules.Check(cfg, entriesFor("one.ts"))

		require.Len(t, result.Violations, 1)
		assert.Contains(t, result.Violations[0].Message, "below the minimum")
	})

	t.Run("above_maximum", func(t *testing.T) {
		cfg := &types.Config{Mode: types.ModeWarn}
		cfg.Layout = dir(
			types.DirChild{
				Name: "$routes",
				Node: &types.ManyNode{
					NodeBase: types.NodeBase{Pattern: "*.ts"},
					Max:      1,
				},
				Meta: true,
			},
		)

		result := rules.Check(cfg, entriesFor("one.ts", "two.ts"))

		require.Len(t, result.Violations, 1)
		assert.Contains(t, result.Violations[0].Message, "above the maximum")
	})

	t.Run("within_bounds", func(t *testing.T) {
		cfg := strictConfig()
		cfg.Layout = dir(
			types.DirChild{
				Name: "$routes",
				Node: &types.ManyNode{
					NodeBase: types.NodeBase{Pattern: "*.ts"},
					Min:      1,
					Max:      3,
				},
				Meta: true,
			},
		)

		result := rules.Check(cfg, entriesFor("one.ts", "two.ts"))
		assert.Empty(t, result.Violations)
	})
}

func TestLayout_RecursiveRoutes(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(
		types.DirChild{
			Name: "$routes",
			Node: &types.RecursiveNode{
				MaxDepth: 3,
			},
			Meta: true,
		},
	)

	result := rules.Check(cfg, entriesFor(
		"app/",
		"app/page.tsx",
		"app/settings/page.tsx",
	))
	assert.Empty(t, result.Violations)
}

func TestLayout_RecursiveMaxDepthStopsDescent(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(
		types.DirChild{
			Name: "$routes",
			Node: &types.RecursiveNode{MaxDepth: 1},
			Meta: true,
		},
	)

	// Entries below the recursion bound stay unmatched
	result := rules.Check(cfg, entriesFor("a/b/c.txt"))

	paths := violationPaths(result.Violations)
	assert.Contains(t, paths, "a/b/c.txt")
	assert.NotContains(t, paths, "a")
	assert.NotContains(t, paths, "a/b")
}

func TestLayout_EitherFirstVariantWins(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("index.ts", &types.EitherNode{
		Variants: []types.LayoutNode{file(), dir()},
	}))

	result := rules.Check(cfg, entriesFor("index.ts"))
	assert.Empty(t, result.Violations)
}

func TestLayout_EitherRollsBackFailedVariant(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("component", &types.EitherNode{
		Variants: []types.LayoutNode{
			file(),
			dir(child("index.ts", file())),
		},
	}))

	// component is a directory containing only index.ts: the file variant
	// fails, and its missing-file violation must not leak
	result := rules.Check(cfg, entriesFor("component/index.ts"))
	assert.Empty(t, result.Violations)
}

func TestLayout_EitherNoVariantMatched(t *testing.T) {
	cfg := &types.Config{Mode: types.ModeWarn}
	cfg.Layout = dir(child("thing", &types.EitherNode{
		Variants: []types.LayoutNode{file(), dir(child("index.ts", file()))},
	}))

	result := rules.Check(cfg, entriesFor("README.md"))

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "thing", result.Violations[0].Path)
	assert.Equal(t, "no variant matched", result.Violations[0].Message)
}

func TestLayout_HiddenNamesExemptFromCase(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child(".eslintrc.js", file(caseStyle(types.CaseKebab))))

	result := rules.Check(cfg, entriesFor(".eslintrc.js"))
	assert.Empty(t, result.Violations)
}

func TestCheck_Idempotent(t *testing.T) {
	cfg := strictConfig()
	cfg.Layout = dir(child("package.json", file()))
	entries := entriesFor("package.json", "stray.txt")

	first := rules.Check(cfg, entries)
	second := rules.Check(cfg, entries)

	assert.Equal(t, first.Violations, second.Violations)
}
