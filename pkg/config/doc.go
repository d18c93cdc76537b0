// Package config locates, layers, and decodes treelint configuration.
//
// Settings are merged in order: embedded defaults, extended presets or
// files, the project config file, and TREELINT_ environment variables.
// The layout tree and the structural rules are decoded from the raw
// document because their keys are arbitrary path patterns that a
// flattening key-value store would mangle.
package config
