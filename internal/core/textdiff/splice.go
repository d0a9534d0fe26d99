package textdiff

import "strings"

// SplitLines splits content on newline boundaries. The empty string has
// zero lines. This convention holds engine-wide (splitting, splicing,
// joining) so that empty content round-trips instead of growing a
// phantom empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Splice replaces the 1-based inclusive line range [startLine, endLine]
// of content with the lines of replacement. A startLine of zero or less
// inserts at the very start without deleting anything; an endLine below
// startLine deletes nothing and inserts before startLine. Out-of-range
// values clamp to the document bounds; the function is total and never
// fails.
func Splice(content string, startLine, endLine int, replacement string) string {
	lines := SplitLines(content)
	repl := SplitLines(replacement)

	if startLine <= 0 {
		merged := make([]string, 0, len(repl)+len(lines))
		merged = append(merged, repl...)
		merged = append(merged, lines...)
		return JoinLines(merged)
	}

	// 0-based slice bounds: the range covers lines[lo:hi].
	lo := startLine - 1
	if lo > len(lines) {
		lo = len(lines)
	}
	hi := endLine
	if hi < lo {
		hi = lo
	}
	if hi > len(lines) {
		hi = len(lines)
	}

	merged := make([]string, 0, lo+len(repl)+len(lines)-hi)
	merged = append(merged, lines[:lo]...)
	merged = append(merged, repl...)
	merged = append(merged, lines[hi:]...)
	return JoinLines(merged)
}
