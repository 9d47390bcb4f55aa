// Package compare normalizes and compares program output.
package compare

import "strings"

// Options controls output normalization before comparison.
type Options struct {
	// IgnoreWhitespace collapses whitespace runs to single spaces and
	// trims both ends before comparing.
	IgnoreWhitespace bool
	// IgnoreCase lowercases both sides before comparing.
	IgnoreCase bool
	// TrimTrailingNewline drops trailing newline differences only.
	TrimTrailingNewline bool
}

// JudgeDefaults is the policy for submission judging: exact match after
// trimming trailing newline differences.
func JudgeDefaults() Options {
	return Options{TrimTrailingNewline: true}
}

// RunDefaults is the policy for interactive, non-judged runs:
// whitespace-insensitive, case-sensitive.
func RunDefaults() Options {
	return Options{IgnoreWhitespace: true}
}

// Compare reports whether actual matches expected under opts.
func Compare(actual, expected string, opts Options) bool {
	return normalize(actual, opts) == normalize(expected, opts)
}

func normalize(s string, opts Options) string {
	if opts.IgnoreWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	} else if opts.TrimTrailingNewline {
		s = strings.TrimRight(s, "\r\n")
	}
	if opts.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}
