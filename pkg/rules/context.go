package rules

import (
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/matcher"
	"github.com/treelint/treelint/pkg/types"
)

// CheckContext is the engine's mutable state for one check run. Exactly
// one exists per run and it is discarded when the run completes.
type CheckContext struct {
	Config  *types.Config
	Entries []types.FileEntry

	// Files and Dirs index the entry set by relative path
	Files map[string]struct{}
	Dirs  map[string]struct{}

	// Violations accumulates in rule order; the engine sorts at the end
	Violations []types.Violation

	// Matched holds every relative path some layout rule has accounted
	// for. It is the single source of truth preventing a path from being
	// reported both as present-elsewhere and as unexpected.
	Matched map[string]struct{}

	children map[string][]string
	cache    *matcher.Cache
	logger   zerolog.Logger
}

// NewCheckContext builds the context for one run. Entries matching the
// config's IgnorePaths are filtered out here and are invisible to every
// rule.
func NewCheckContext(cfg *types.Config, entries []types.FileEntry) *CheckContext {
	ctx := &CheckContext{
		Config:   cfg,
		Files:    make(map[string]struct{}),
		Dirs:     make(map[string]struct{}),
		Matched:  make(map[string]struct{}),
		children: make(map[string][]string),
		cache:    matcher.NewCache(matcher.DefaultCacheSize),
		logger:   logging.GetLogger("rules.context"),
	}

	for _, e := range entries {
		if matcherAny(ctx.cache, cfg.IgnorePaths, e.RelPath) {
			continue
		}
		ctx.Entries = append(ctx.Entries, e)
		if e.IsDir {
			ctx.Dirs[e.RelPath] = struct{}{}
		} else {
			ctx.Files[e.RelPath] = struct{}{}
		}

		parent := ""
		if i := strings.LastIndexByte(e.RelPath, '/'); i >= 0 {
			parent = e.RelPath[:i]
		}
		ctx.children[parent] = append(ctx.children[parent], e.RelPath)
	}

	sort.Slice(ctx.Entries, func(i, j int) bool {
		return ctx.Entries[i].RelPath < ctx.Entries[j].RelPath
	})
	for _, kids := range ctx.children {
		sort.Strings(kids)
	}

	return ctx
}

// IsFile reports whether rel is a file in the entry set
func (c *CheckContext) IsFile(rel string) bool {
	_, ok := c.Files[rel]
	return ok
}

// IsDir reports whether rel is a directory in the entry set
func (c *CheckContext) IsDir(rel string) bool {
	_, ok := c.Dirs[rel]
	return ok
}

// Exists reports whether rel is any entry in the set
func (c *CheckContext) Exists(rel string) bool {
	return c.IsFile(rel) || c.IsDir(rel)
}

// ChildrenOf returns the sorted relative paths of dir's direct children.
// The scan root is addressed as "".
func (c *CheckContext) ChildrenOf(dir string) []string {
	return c.children[dir]
}

// MarkMatched records that a layout rule accounted for rel
func (c *CheckContext) MarkMatched(rel string) {
	c.Matched[rel] = struct{}{}
}

// IsMatched reports whether some layout rule already accounted for rel
func (c *CheckContext) IsMatched(rel string) bool {
	_, ok := c.Matched[rel]
	return ok
}

// AddViolation appends a violation
func (c *CheckContext) AddViolation(v types.Violation) {
	c.Violations = append(c.Violations, v)
}

// Severity returns the severity the configured mode assigns
func (c *CheckContext) Severity() types.Severity {
	return c.Config.SeverityFor()
}

// Match tests rel against a glob through the run's pattern cache.
// Invalid patterns never match; they are reported once at debug level.
func (c *CheckContext) Match(pattern, rel string) bool {
	m, err := c.cache.Get(pattern)
	if err != nil {
		c.logger.Debug().Err(err).Str("pattern", pattern).Msg("Skipping invalid pattern")
		return false
	}
	return m.Match(rel)
}

// MatchAny tests rel against each pattern in turn
func (c *CheckContext) MatchAny(patterns []string, rel string) bool {
	return matcherAny(c.cache, patterns, rel)
}

// snapshot captures the rollback point for speculative validation
type snapshot struct {
	violations int
	matched    map[string]struct{}
}

// Snapshot captures the current violations length and matched set so a
// speculative attempt can be rolled back.
func (c *CheckContext) Snapshot() snapshot {
	matched := make(map[string]struct{}, len(c.Matched))
	for k := range c.Matched {
		matched[k] = struct{}{}
	}
	return snapshot{violations: len(c.Violations), matched: matched}
}

// Restore discards every violation and matched-set change made since the
// snapshot was taken.
func (c *CheckContext) Restore(s snapshot) {
	c.Violations = c.Violations[:s.violations]
	c.Matched = s.matched
}

// Basename returns the final segment of a relative path
func Basename(rel string) string {
	return path.Base(rel)
}

func matcherAny(cache *matcher.Cache, patterns []string, rel string) bool {
	for _, p := range patterns {
		m, err := cache.Get(p)
		if err != nil {
			continue
		}
		if m.Match(rel) {
			return true
		}
	}
	return false
}
