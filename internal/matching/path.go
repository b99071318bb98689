package matching

import (
	"regexp"
	"strings"
)

// Pattern is a compiled route path pattern.
type Pattern struct {
	raw string
	re  *regexp.Regexp // nil for literal-only patterns
}

// Compile converts a glob-style path pattern into a Pattern.
// It never fails: characters other than the wildcard tokens are quoted, so any
// input produces a valid matcher.
func Compile(pattern string) *Pattern {
	p := &Pattern{raw: pattern}
	if !strings.Contains(pattern, "*") {
		return p
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	rest := pattern
	for rest != "" {
		i := strings.IndexByte(rest, '*')
		if i < 0 {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		b.WriteString(regexp.QuoteMeta(rest[:i]))
		rest = rest[i:]

		// "**" is consumed as a single token before "*" is considered.
		if strings.HasPrefix(rest, "**") {
			b.WriteString(`.*`)
			rest = rest[2:]
			continue
		}
		b.WriteString(`[^/]+`)
		rest = rest[1:]
	}
	b.WriteString("$")

	p.re = regexp.MustCompile(b.String())
	return p
}

// String returns the pattern as it was written.
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	if strings.EqualFold(path, p.raw) {
		return true
	}
	return p.re != nil && p.re.MatchString(path)
}

// Match reports whether path matches pattern.
// It compiles pattern on every call; callers matching the same pattern
// repeatedly should use Compile.
func Match(path, pattern string) bool {
	return Compile(pattern).Match(path)
}
