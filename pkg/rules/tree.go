package rules

import (
	"sort"
	"strings"

	"github.com/treelint/treelint/pkg/types"
)

// dirNode is one directory in the ephemeral lookup tree the match rules
// build for repeated pattern queries.
type dirNode struct {
	rel      string
	children map[string]*dirNode
}

// dirTree indexes every directory in the entry set by name. It is built
// once per check run, in a single pass over the entries.
type dirTree struct {
	root *dirNode
}

func newDirTree(entries []types.FileEntry) *dirTree {
	t := &dirTree{root: &dirNode{rel: "", children: make(map[string]*dirNode)}}

	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		t.insert(e.RelPath)
	}
	return t
}

func (t *dirTree) insert(rel string) {
	node := t.root
	for _, seg := range strings.Split(rel, "/") {
		child, ok := node.children[seg]
		if !ok {
			prefix := node.rel
			if prefix != "" {
				prefix += "/"
			}
			child = &dirNode{rel: prefix + seg, children: make(map[string]*dirNode)}
			node.children[seg] = child
		}
		node = child
	}
}

// findDirs returns the sorted relative paths of directories matching the
// pattern, skipping any that match an exclude pattern. The walk uses an
// explicit queue so adversarially deep trees cannot exhaust the stack.
func (t *dirTree) findDirs(ctx *CheckContext, pattern string, excludes []string) []string {
	var found []string

	queue := []*dirNode{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.rel != "" {
			if ctx.MatchAny(excludes, node.rel) {
				continue
			}
			if ctx.Match(pattern, node.rel) {
				found = append(found, node.rel)
			}
		}

		names := make([]string, 0, len(node.children))
		for name := range node.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			queue = append(queue, node.children[name])
		}
	}

	sort.Strings(found)
	return found
}
