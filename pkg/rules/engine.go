package rules

import (
	"sort"
	"time"

	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/types"
)

// Check runs every configured rule against the entry set and returns the
// result. Check never fails: malformed configuration is rejected before
// it reaches the engine, and any well-formed input produces a result.
func Check(cfg *types.Config, entries []types.FileEntry) *types.CheckResult {
	logger := logging.GetLogger("rules.engine")
	start := time.Now()

	ctx := NewCheckContext(cfg, entries)

	checkForbiddenPaths(ctx)
	checkForbiddenNames(ctx)
	checkDependencies(ctx)
	checkMirrors(ctx)
	checkWhen(ctx)
	checkMatchRules(ctx)

	// Layout runs last: it is the only check that populates the matched
	// set, and the strict-mode sweep needs that set complete.
	if cfg.Layout != nil {
		newLayoutValidator(ctx).Run(cfg.Layout)
	}

	sort.SliceStable(ctx.Violations, func(i, j int) bool {
		a, b := ctx.Violations[i], ctx.Violations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})

	result := &types.CheckResult{
		Violations: ctx.Violations,
		Summary: types.Summary{
			Total:        len(ctx.Violations),
			FilesChecked: len(ctx.Entries),
			Duration:     time.Since(start),
		},
	}
	for _, v := range ctx.Violations {
		switch v.Severity {
		case types.SeverityError:
			result.Summary.Errors++
		case types.SeverityWarning:
			result.Summary.Warnings++
		}
	}

	logger.Debug().
		Int("violations", result.Summary.Total).
		Int("entries", len(ctx.Entries)).
		Dur("duration", result.Summary.Duration).
		Msg("Check complete")

	return result
}
