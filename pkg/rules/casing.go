package rules

import (
	"regexp"
	"strings"

	"github.com/treelint/treelint/pkg/types"
)

var caseRes = map[types.CaseStyle]*regexp.Regexp{
	types.CaseKebab:  regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`),
	types.CaseSnake:  regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`),
	types.CaseCamel:  regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
	types.CasePascal: regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`),
}

// ValidCase reports whether a basename satisfies the case style. The
// extension is stripped before checking, and hidden (dot-prefixed) names
// always pass.
func ValidCase(name string, style types.CaseStyle) bool {
	if style == types.CaseAny {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}

	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	re, ok := caseRes[style]
	if !ok {
		return true
	}
	return re.MatchString(name)
}
