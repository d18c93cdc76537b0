// Test Type: Unit Test
// Description: Shared fixtures for the rules package tests

package rules_test

import (
	"sort"
	"strings"

	"github.com/treelint/treelint/pkg/types"
)

// entriesFor builds an entry set from relative paths. Paths ending in
// "/" are directories; intermediate directories are added implicitly.
func entriesFor(paths ...string) []types.FileEntry {
	dirs := make(map[string]bool)
	files := make(map[string]bool)

	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			dirs[strings.TrimSuffix(p, "/")] = true
			p = strings.TrimSuffix(p, "/")
		} else {
			files[p] = true
		}
		for i := strings.LastIndexByte(p, '/'); i > 0; i = strings.LastIndexByte(p, '/') {
			p = p[:i]
			dirs[p] = true
		}
	}

	var entries []types.FileEntry
	for d := range dirs {
		entries = append(entries, types.FileEntry{
			RelPath: d,
			IsDir:   true,
			Depth:   strings.Count(d, "/") + 1,
		})
	}
	for f := range files {
		entries = append(entries, types.FileEntry{
			RelPath: f,
			Depth:   strings.Count(f, "/") + 1,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries
}

func violationPaths(vs []types.Violation) []string {
	paths := make([]string, 0, len(vs))
	for _, v := range vs {
		paths = append(paths, v.Path)
	}
	return paths
}

func strictConfig() *types.Config {
	return &types.Config{Mode: types.ModeStrict}
}
