package matcher

import (
	"regexp"
	"strings"

	"github.com/treelint/treelint/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Matcher is a compiled glob pattern usable as a predicate over
// normalized relative paths. Matchers are immutable and safe for
// concurrent use.
type Matcher struct {
	pattern string
	negate  bool
	res     []*regexp.Regexp
}

// NormalizePath canonicalizes a path for matching: backslashes become
// forward slashes, runs of slashes collapse to one, the trailing slash is
// stripped, and Unicode is normalized to composed form so visually
// identical paths compare equal. Leading slashes are preserved, so
// absolute and relative paths are never treated as equivalent.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}

	return norm.NFC.String(p)
}

// hasMeta reports whether the pattern contains any glob metacharacter
func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Compile translates a glob pattern into a Matcher.
//
// Pattern semantics: `*` matches within one path segment, `**` matches
// zero or more full segments, `?` matches exactly one character,
// character classes and brace groups are supported, and a leading `!`
// negates the match. A pattern with no slash that contains a
// metacharacter is a basename pattern and matches at any depth; a bare
// literal name matches only the exact relative path.
func Compile(pattern string) (*Matcher, error) {
	original := pattern

	negate := false
	if strings.HasPrefix(pattern, "!") {
		negate = true
		pattern = pattern[1:]
	}

	pattern = NormalizePath(pattern)
	if pattern == "" {
		return nil, errors.Newf(errors.ErrPatternInvalid, "empty pattern %q", original)
	}

	// Basename patterns match at any depth. A bare "**" already does,
	// so it is left alone.
	if !strings.Contains(pattern, "/") && hasMeta(pattern) && pattern != "**" {
		pattern = "**/" + pattern
	}

	expanded, err := expandBraces(pattern)
	if err != nil {
		return nil, err
	}

	res := make([]*regexp.Regexp, 0, len(expanded))
	for _, exp := range expanded {
		src, err := globToRegexp(exp)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid pattern %q", original)
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid pattern %q", original)
		}
		res = append(res, re)
	}

	return &Matcher{pattern: original, negate: negate, res: res}, nil
}

// Pattern returns the original pattern text
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Match reports whether the path satisfies the pattern. The path is
// normalized before matching.
func (m *Matcher) Match(path string) bool {
	p := NormalizePath(path)
	matched := false
	for _, re := range m.res {
		if re.MatchString(p) {
			matched = true
			break
		}
	}
	if m.negate {
		return !matched
	}
	return matched
}

// expandBraces rewrites `{a,b}` groups into one pattern per alternative.
// Nested braces are a configuration error and fail loudly rather than
// silently mis-expanding.
func expandBraces(pattern string) ([]string, error) {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		if strings.IndexByte(pattern, '}') >= 0 {
			return nil, errors.Newf(errors.ErrPatternInvalid, "unmatched '}' in pattern %q", pattern)
		}
		return []string{pattern}, nil
	}

	var alts []string
	depth := 1
	start := open + 1
	end := -1
	for i := start; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			return nil, errors.Newf(errors.ErrPatternInvalid, "nested braces in pattern %q", pattern)
		case '}':
			depth--
			if depth == 0 {
				alts = append(alts, pattern[start:i])
				end = i
			}
		case ',':
			if depth == 1 {
				alts = append(alts, pattern[start:i])
				start = i + 1
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, errors.Newf(errors.ErrPatternInvalid, "unmatched '{' in pattern %q", pattern)
	}

	prefix := pattern[:open]
	rest, err := expandBraces(pattern[end+1:])
	if err != nil {
		return nil, err
	}

	var out []string
	for _, alt := range alts {
		for _, r := range rest {
			out = append(out, prefix+alt+r)
		}
	}
	return out, nil
}

// globToRegexp translates a single brace-free glob into an anchored
// regular expression source string.
func globToRegexp(pattern string) (string, error) {
	var b strings.Builder
	b.WriteString("^")

	i := 0
	n := len(pattern)
	for i < n {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < n && pattern[i+1] == '*' {
				segStart := i == 0 || pattern[i-1] == '/'
				segEnd := i+2 == n || pattern[i+2] == '/'
				if segStart && segEnd {
					if i+2 < n {
						// "**/" consumes zero or more whole segments
						b.WriteString(`(?:[^/]+/)*`)
						i += 3
					} else if i > 0 {
						// trailing "/**": back out the slash already
						// written and allow zero segments. When a "**/"
						// token consumed the slash instead, the two
						// tokens together match any path.
						s := b.String()
						if strings.HasSuffix(s, "/") {
							b.Reset()
							b.WriteString(strings.TrimSuffix(s, "/"))
							b.WriteString(`(?:/[^/]+)*`)
						} else {
							b.WriteString(`.*`)
						}
						i += 2
					} else {
						// pattern is just "**"
						b.WriteString(`.*`)
						i += 2
					}
					continue
				}
				// embedded "**" collapses to a single-segment wildcard
				b.WriteString(`[^/]*`)
				i += 2
				continue
			}
			b.WriteString(`[^/]*`)
			i++
		case '?':
			b.WriteString(`[^/]`)
			i++
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return "", errors.Newf(errors.ErrPatternInvalid, "unclosed character class in %q", pattern)
			}
			class := pattern[i+1 : i+1+end]
			b.WriteString("[")
			if strings.HasPrefix(class, "!") {
				b.WriteString("^")
				class = class[1:]
			}
			b.WriteString(class)
			b.WriteString("]")
			i += end + 2
		default:
			// Copy the literal run whole so multi-byte UTF-8 sequences
			// survive; quoting byte by byte would re-encode each byte as
			// its own code point.
			j := i + 1
			for j < n && !isGlobMeta(pattern[j]) {
				j++
			}
			b.WriteString(regexp.QuoteMeta(pattern[i:j]))
			i = j
		}
	}

	b.WriteString("$")
	return b.String(), nil
}

func isGlobMeta(c byte) bool {
	return c == '*' || c == '?' || c == '['
}
