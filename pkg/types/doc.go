// Package types defines the core types shared across treelint.
// This includes the FileEntry model produced by the scanner, the
// LayoutNode tree describing expected repository structure, and the
// Violation/CheckResult types consumed by the output renderers.
package types
