// Package textdiff computes line-level diffs between two versions of a
// document and groups them into reviewable hunks.
//
// The differ is a bounded-lookahead heuristic, not an optimal diff. It
// trades minimal edit scripts for predictable output and linear-ish cost,
// which is what a review surface needs: the same inputs always produce
// the same lines.
package textdiff

// lookaheadLimit bounds how far ahead the differ scans to resynchronize
// the two inputs after a mismatch. Divergences longer than this come out
// as paired replacements instead of detected insert or delete runs.
const lookaheadLimit = 50

// LineType represents the role of a single line in a diff.
type LineType int

const (
	LineEqual  LineType = iota // present in both versions
	LineAdd                    // present only in the modified version
	LineRemove                 // present only in the original version
)

func (t LineType) String() string {
	switch t {
	case LineEqual:
		return "equal"
	case LineAdd:
		return "add"
	case LineRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Line is a single line of diff output. Line numbers are 1-based; zero
// means the line does not exist on that side. Equal lines carry both
// numbers, additions only NewLineNum, removals only OldLineNum.
type Line struct {
	Type       LineType
	Content    string
	OldLineNum int
	NewLineNum int
}

// Diff compares two documents line by line and returns the full edit
// sequence. On a mismatch it scans a bounded window for a
// resynchronization point, preferring an insertion run over a deletion
// run when both would work; if neither side resyncs within the window
// the pair is emitted as an in-place rewrite (one removal, one
// addition). Leftover tails after either cursor is exhausted are emitted
// as plain removals or additions.
func Diff(original, modified string) []Line {
	origLines := SplitLines(original)
	modLines := SplitLines(modified)

	switch {
	case len(origLines) == 0 && len(modLines) == 0:
		return nil
	case len(origLines) == 0:
		out := make([]Line, 0, len(modLines))
		for idx, content := range modLines {
			out = append(out, Line{Type: LineAdd, Content: content, NewLineNum: idx + 1})
		}
		return out
	case len(modLines) == 0:
		out := make([]Line, 0, len(origLines))
		for idx, content := range origLines {
			out = append(out, Line{Type: LineRemove, Content: content, OldLineNum: idx + 1})
		}
		return out
	}

	var out []Line
	i, j := 0, 0

	for i < len(origLines) && j < len(modLines) {
		if origLines[i] == modLines[j] {
			out = append(out, Line{Type: LineEqual, Content: origLines[i], OldLineNum: i + 1, NewLineNum: j + 1})
			i++
			j++
			continue
		}

		// Insertion sync: the current original line reappears a short
		// distance ahead in the modified text.
		if k := scanAhead(modLines, j, origLines[i]); k > 0 {
			for t := range k {
				out = append(out, Line{Type: LineAdd, Content: modLines[j+t], NewLineNum: j + t + 1})
			}
			j += k
			continue
		}

		// Deletion sync: the current modified line reappears a short
		// distance ahead in the original text.
		if k := scanAhead(origLines, i, modLines[j]); k > 0 {
			for t := range k {
				out = append(out, Line{Type: LineRemove, Content: origLines[i+t], OldLineNum: i + t + 1})
			}
			i += k
			continue
		}

		// No sync point within the window: in-place rewrite.
		out = append(out, Line{Type: LineRemove, Content: origLines[i], OldLineNum: i + 1})
		out = append(out, Line{Type: LineAdd, Content: modLines[j], NewLineNum: j + 1})
		i++
		j++
	}

	for ; i < len(origLines); i++ {
		out = append(out, Line{Type: LineRemove, Content: origLines[i], OldLineNum: i + 1})
	}
	for ; j < len(modLines); j++ {
		out = append(out, Line{Type: LineAdd, Content: modLines[j], NewLineNum: j + 1})
	}

	return out
}

// scanAhead returns the smallest k > 0 within the lookahead window such
// that lines[from+k] equals want, or 0 when no such line exists.
func scanAhead(lines []string, from int, want string) int {
	for k := 1; k <= lookaheadLimit && from+k < len(lines); k++ {
		if lines[from+k] == want {
			return k
		}
	}
	return 0
}
