// Test Type: Unit Test
// Description: Tests for wildcard capture and substitution

package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelint/treelint/pkg/matcher"
)

func TestCompileCapture(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    []string
	}{
		{"single_star", "src/*.ts", "src/main.ts", []string{"main"}},
		{"two_stars", "src/*/*.ts", "src/util/format.ts", []string{"util", "format"}},
		{"double_star_middle", "src/**/*.ts", "src/a/b/c.ts", []string{"a/b", "c"}},
		{"double_star_empty", "src/**/*.ts", "src/top.ts", []string{"", "top"}},
		{"trailing_double_star", "vendor/**", "vendor/x/y.go", []string{"x/y.go"}},
		{"trailing_double_star_self", "vendor/**", "vendor", []string{""}},
		{"question_mark", "v?/api.ts", "v2/api.ts", []string{"2"}},
		{"char_class", "file[0-9].txt", "file7.txt", []string{"7"}},
		{"unicode_literal", "docs/café-*.md", "docs/café-menu.md", []string{"menu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := matcher.CompileCapture(tt.pattern)
			require.NoError(t, err)

			got, ok := cp.Captures(tt.path)
			require.True(t, ok, "pattern %q should match %q", tt.pattern, tt.path)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileCapture_NoMatch(t *testing.T) {
	cp, err := matcher.CompileCapture("src/*.ts")
	require.NoError(t, err)

	_, ok := cp.Captures("lib/main.ts")
	assert.False(t, ok)
}

func TestCompileCapture_RejectsBraces(t *testing.T) {
	_, err := matcher.CompileCapture("src/*.{ts,tsx}")
	assert.Error(t, err)
}

func TestSubstituteWildcards(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		captures []string
		want     string
		wantErr  bool
	}{
		{"single", "tests/*.test.ts", []string{"main"}, "tests/main.test.ts", false},
		{"ordered", "out/*/*.js", []string{"util", "format"}, "out/util/format.js", false},
		{"double_star_target", "tests/**/*.test.ts", []string{"a/b", "c"}, "tests/a/b/c.test.ts", false},
		{"empty_capture_collapses", "tests/**/*.test.ts", []string{"", "top"}, "tests/top.test.ts", false},
		{"literal_target", "go.sum", nil, "go.sum", false},
		{"excess_captures_ignored", "docs/*.md", []string{"guide", "extra"}, "docs/guide.md", false},
		{"too_few_captures", "out/*/*.js", []string{"only"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matcher.SubstituteWildcards(tt.target, tt.captures)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
