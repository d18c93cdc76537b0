package rules

import (
	"fmt"

	"github.com/treelint/treelint/pkg/types"
)

// RuleLayout is the rule name layout violations carry
const RuleLayout = "layout"

// layoutValidator interprets the expected-structure tree against the
// entry set, accumulating violations and the matched set in the shared
// context.
type layoutValidator struct {
	ctx *CheckContext
}

func newLayoutValidator(ctx *CheckContext) *layoutValidator {
	return &layoutValidator{ctx: ctx}
}

// Run validates the whole tree from the root and, in strict mode, sweeps
// for entries no rule accounted for.
func (v *layoutValidator) Run(root types.LayoutNode) {
	v.validate(root, "", 0)

	if v.ctx.Config.Mode != types.ModeStrict {
		return
	}
	for _, e := range v.ctx.Entries {
		if v.ctx.IsMatched(e.RelPath) {
			continue
		}
		v.ctx.AddViolation(types.Violation{
			Path:     e.RelPath,
			Rule:     RuleLayout,
			Message:  "unexpected file",
			Severity: types.SeverityError,
		})
	}
}

// validate interprets one node at rel, reporting whether it matched
// anything. rel is "" for the scan root; depth tracks recursive nodes
// only.
func (v *layoutValidator) validate(node types.LayoutNode, rel string, depth int) bool {
	switch n := node.(type) {
	case *types.FileNode:
		return v.validateFile(n, rel)
	case *types.DirNode:
		return v.validateDir(n, rel)
	case *types.ParamNode:
		return v.validateParam(n, rel)
	case *types.ManyNode:
		return v.validateMany(n, rel)
	case *types.RecursiveNode:
		return v.validateRecursive(n, rel, depth)
	case *types.EitherNode:
		return v.validateEither(n, rel, depth)
	default:
		return false
	}
}

func (v *layoutValidator) validateFile(n *types.FileNode, rel string) bool {
	if !v.ctx.IsFile(rel) {
		if !n.Optional {
			v.addMissing(rel, "required file missing")
		}
		return false
	}

	v.ctx.MarkMatched(rel)
	v.checkName(&n.NodeBase, rel)
	return true
}

func (v *layoutValidator) validateDir(n *types.DirNode, rel string) bool {
	root := rel == ""
	if !root && !v.ctx.IsDir(rel) {
		if !n.Optional {
			v.addMissing(rel, "required directory missing")
		}
		return false
	}

	if !root {
		v.ctx.MarkMatched(rel)
		v.checkName(&n.NodeBase, rel)
	}

	literal := make(map[string]struct{})
	for _, child := range n.Children {
		if child.Meta {
			// Meta children scan the directory's own children, so they
			// are applied at the directory's path, not below a name.
			v.validate(child.Node, rel, 0)
			continue
		}
		literal[child.Name] = struct{}{}
		v.validate(child.Node, joinRel(rel, child.Name), 0)
	}

	if n.Strict {
		for _, childRel := range v.ctx.ChildrenOf(rel) {
			name := Basename(childRel)
			if _, ok := literal[name]; ok {
				continue
			}
			if v.ctx.IsMatched(childRel) {
				continue
			}
			v.ctx.AddViolation(types.Violation{
				Path:     childRel,
				Rule:     RuleLayout,
				Message:  "unexpected entry in strict directory",
				Severity: v.ctx.Severity(),
			})
			// Marking it here avoids a second report from the final
			// unmatched-entry sweep.
			v.ctx.MarkMatched(childRel)
		}
	}

	return true
}

func (v *layoutValidator) validateParam(n *types.ParamNode, rel string) bool {
	for _, childRel := range v.ctx.ChildrenOf(rel) {
		if v.ctx.IsMatched(childRel) {
			continue
		}
		name := Basename(childRel)

		// Case is validated even for entries the pattern check skips
		v.checkCase(n.Case, childRel, name)

		if n.Pattern != "" && !v.ctx.Match(n.Pattern, name) {
			continue
		}

		v.ctx.MarkMatched(childRel)
		if n.Child != nil {
			v.validate(n.Child, childRel, 0)
		}
		return true
	}

	return false
}

func (v *layoutValidator) validateMany(n *types.ManyNode, rel string) bool {
	count := v.consumeChildren(&manyNodeView{n}, rel, 0)

	if n.Min > 0 && count < n.Min {
		v.ctx.AddViolation(types.Violation{
			Path:     rel,
			Rule:     RuleLayout,
			Message:  fmt.Sprintf("matched %d entries, below the minimum of %d", count, n.Min),
			Severity: v.ctx.Severity(),
			Expected: fmt.Sprintf(">= %d", n.Min),
			Actual:   fmt.Sprintf("%d", count),
		})
	} else if n.Max > 0 && count > n.Max {
		v.ctx.AddViolation(types.Violation{
			Path:     rel,
			Rule:     RuleLayout,
			Message:  fmt.Sprintf("matched %d entries, above the maximum of %d", count, n.Max),
			Severity: v.ctx.Severity(),
			Expected: fmt.Sprintf("<= %d", n.Max),
			Actual:   fmt.Sprintf("%d", count),
		})
	}

	return count > 0
}

func (v *layoutValidator) validateRecursive(n *types.RecursiveNode, rel string, depth int) bool {
	count := v.consumeChildren(&recursiveNodeView{n}, rel, depth)
	return count > 0
}

// childConsumer generalizes the traversal many and recursive share
type childConsumer interface {
	base() *types.NodeBase
	child() types.LayoutNode
	descend(v *layoutValidator, childRel string, depth int)
}

type manyNodeView struct{ n *types.ManyNode }

func (m *manyNodeView) base() *types.NodeBase { return &m.n.NodeBase }
func (m *manyNodeView) child() types.LayoutNode { return m.n.Child }
func (m *manyNodeView) descend(*layoutValidator, string, int) {}

type recursiveNodeView struct{ n *types.RecursiveNode }

func (r *recursiveNodeView) base() *types.NodeBase { return &r.n.NodeBase }
func (r *recursiveNodeView) child() types.LayoutNode { return r.n.Child }

func (r *recursiveNodeView) descend(v *layoutValidator, childRel string, depth int) {
	if !v.ctx.IsDir(childRel) {
		return
	}
	if r.n.MaxDepth > 0 && depth+1 > r.n.MaxDepth {
		return
	}
	v.validateRecursive(r.n, childRel, depth+1)
}

// consumeChildren applies a dynamic node to every qualifying unmatched
// direct child of rel and returns how many it consumed.
func (v *layoutValidator) consumeChildren(c childConsumer, rel string, depth int) int {
	nb := c.base()
	count := 0

	for _, childRel := range v.ctx.ChildrenOf(rel) {
		if v.ctx.IsMatched(childRel) {
			continue
		}
		name := Basename(childRel)

		v.checkCase(nb.Case, childRel, name)

		if nb.Pattern != "" && !v.ctx.Match(nb.Pattern, name) {
			continue
		}

		v.ctx.MarkMatched(childRel)
		if child := c.child(); child != nil {
			v.validate(child, childRel, 0)
		}
		count++

		c.descend(v, childRel, depth)
	}

	return count
}

func (v *layoutValidator) validateEither(n *types.EitherNode, rel string, depth int) bool {
	for _, variant := range n.Variants {
		snap := v.ctx.Snapshot()
		if v.validate(variant, rel, depth) {
			return true
		}
		// A failed speculative attempt must never leak partial
		// violations into the final result.
		v.ctx.Restore(snap)
	}

	if !n.Optional {
		v.ctx.AddViolation(types.Violation{
			Path:     rel,
			Rule:     RuleLayout,
			Message:  "no variant matched",
			Severity: v.ctx.Severity(),
		})
	}
	return false
}

// checkName validates the pattern and case constraints against a node's
// basename. The two checks are independent; both can fire.
func (v *layoutValidator) checkName(nb *types.NodeBase, rel string) {
	name := Basename(rel)

	if nb.Pattern != "" && !v.ctx.Match(nb.Pattern, name) {
		v.ctx.AddViolation(types.Violation{
			Path:     rel,
			Rule:     RuleLayout,
			Message:  fmt.Sprintf("name does not match pattern %q", nb.Pattern),
			Severity: v.ctx.Severity(),
			Expected: nb.Pattern,
			Actual:   name,
		})
	}

	v.checkCase(nb.Case, rel, name)
}

func (v *layoutValidator) checkCase(style types.CaseStyle, rel, name string) {
	if style == types.CaseAny || ValidCase(name, style) {
		return
	}
	v.ctx.AddViolation(types.Violation{
		Path:     rel,
		Rule:     RuleLayout,
		Message:  fmt.Sprintf("name is not %s", style),
		Severity: v.ctx.Severity(),
		Expected: string(style),
		Actual:   name,
	})
}

func (v *layoutValidator) addMissing(rel, message string) {
	v.ctx.AddViolation(types.Violation{
		Path:     rel,
		Rule:     RuleLayout,
		Message:  message,
		Severity: v.ctx.Severity(),
	})
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}
