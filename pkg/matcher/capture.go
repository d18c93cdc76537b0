package matcher

import (
	"regexp"
	"strings"

	"github.com/treelint/treelint/pkg/errors"
)

// CapturePattern is a glob compiled with one capture group per wildcard,
// used to carry matched segments from a source pattern into a target
// pattern. Brace groups are not supported here because alternatives can
// disagree on wildcard count.
type CapturePattern struct {
	pattern   string
	re        *regexp.Regexp
	wildcards int
}

// CompileCapture compiles pattern for wildcard capture
func CompileCapture(pattern string) (*CapturePattern, error) {
	p := NormalizePath(pattern)
	if strings.ContainsAny(p, "{}") {
		return nil, errors.Newf(errors.ErrPatternInvalid,
			"brace groups are not supported in substitution patterns: %q", pattern)
	}

	var b strings.Builder
	b.WriteString("^")
	wildcards := 0

	i := 0
	n := len(p)
	for i < n {
		c := p[i]
		switch c {
		case '*':
			wildcards++
			if i+1 < n && p[i+1] == '*' {
				segStart := i == 0 || p[i-1] == '/'
				segEnd := i+2 == n || p[i+2] == '/'
				if segStart && segEnd {
					if i+2 < n {
						// "**/" captures zero or more segments without
						// the trailing slash
						b.WriteString(`(?:((?:[^/]+/)*[^/]+)/)?`)
						i += 3
					} else if i > 0 {
						s := b.String()
						if strings.HasSuffix(s, "/") {
							b.Reset()
							b.WriteString(strings.TrimSuffix(s, "/"))
							b.WriteString(`(?:/((?:[^/]+/)*[^/]+))?`)
						} else {
							// a preceding "**/" already consumed the slash
							b.WriteString(`((?:[^/]+/)*[^/]+)?`)
						}
						i += 2
					} else {
						b.WriteString(`(.*)`)
						i += 2
					}
					continue
				}
				b.WriteString(`([^/]*)`)
				i += 2
				continue
			}
			b.WriteString(`([^/]*)`)
			i++
		case '?':
			wildcards++
			b.WriteString(`([^/])`)
			i++
		case '[':
			end := strings.IndexByte(p[i+1:], ']')
			if end < 0 {
				return nil, errors.Newf(errors.ErrPatternInvalid, "unclosed character class in %q", pattern)
			}
			wildcards++
			class := p[i+1 : i+1+end]
			b.WriteString("([")
			if strings.HasPrefix(class, "!") {
				b.WriteString("^")
				class = class[1:]
			}
			b.WriteString(class)
			b.WriteString("])")
			i += end + 2
		default:
			// Copy the literal run whole so multi-byte UTF-8 sequences
			// survive quoting.
			j := i + 1
			for j < n && !isGlobMeta(p[j]) {
				j++
			}
			b.WriteString(regexp.QuoteMeta(p[i:j]))
			i = j
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid pattern %q", pattern)
	}

	return &CapturePattern{pattern: pattern, re: re, wildcards: wildcards}, nil
}

// Wildcards returns the number of wildcard tokens in the pattern
func (p *CapturePattern) Wildcards() int {
	return p.wildcards
}

// Captures matches path and returns the text each wildcard consumed, in
// pattern order. An unmatched optional segment yields an empty capture.
func (p *CapturePattern) Captures(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(NormalizePath(path))
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// SubstituteWildcards rewrites target by replacing its wildcard tokens
// with captures in order. Targets with more wildcards than available
// captures cannot be resolved.
func SubstituteWildcards(target string, captures []string) (string, error) {
	p := NormalizePath(target)
	var b strings.Builder

	next := 0
	take := func() (string, error) {
		if next >= len(captures) {
			return "", errors.Newf(errors.ErrPatternInvalid,
				"target pattern %q has more wildcards than the source captured", target)
		}
		c := captures[next]
		next++
		return c, nil
	}

	i := 0
	n := len(p)
	for i < n {
		c := p[i]
		switch c {
		case '*':
			seg, err := take()
			if err != nil {
				return "", err
			}
			b.WriteString(seg)
			if i+1 < n && p[i+1] == '*' {
				i += 2
			} else {
				i++
			}
		case '?':
			seg, err := take()
			if err != nil {
				return "", err
			}
			b.WriteString(seg)
			i++
		case '[':
			end := strings.IndexByte(p[i+1:], ']')
			if end < 0 {
				return "", errors.Newf(errors.ErrPatternInvalid, "unclosed character class in %q", target)
			}
			seg, err := take()
			if err != nil {
				return "", err
			}
			b.WriteString(seg)
			i += end + 2
		default:
			b.WriteByte(c)
			i++
		}
	}

	return NormalizePath(b.String()), nil
}
