// Package rules implements the structural rule engine: the recursive
// layout validator plus the cross-cutting checks (forbidden paths and
// names, dependencies, mirrors, conditional requirements, and
// pattern-scoped directory contracts).
//
// All checks share one CheckContext per run. Only the layout validator
// populates the matched set, so it always runs last; the strict-mode
// sweep for unexpected entries depends on that set being complete.
package rules
