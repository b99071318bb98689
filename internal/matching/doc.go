// Package matching compiles glob-style route path patterns into matchers.
//
// Two wildcard tokens are recognised:
//
//   - "*" matches one or more characters within a single path segment (never "/")
//   - "**" matches any sequence of characters, including "/" and the empty sequence
//
// All other characters match literally. Matching is case-insensitive, and a
// path equal to the pattern (ignoring case) always matches, so a pattern with no
// wildcards behaves as a plain literal comparison.
//
// Compiled patterns hold no mutable state and may be shared between goroutines.
package matching
