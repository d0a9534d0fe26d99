package textdiff

import (
	"fmt"
	"hash/fnv"
)

// HunkKind separates runs the reviewer must decide on from the untouched
// context between them.
type HunkKind int

const (
	HunkUnchanged HunkKind = iota // equal lines only
	HunkChange                    // contains at least one add or remove
)

func (k HunkKind) String() string {
	switch k {
	case HunkUnchanged:
		return "unchanged"
	case HunkChange:
		return "change"
	default:
		return "unknown"
	}
}

// Hunk is a contiguous run of diff lines. Concatenating the Lines of
// every hunk returned by Group reproduces the input diff exactly.
//
// Range fields are 1-based inclusive. A zero start and end means the
// hunk has no lines on that side: a pure insertion has no old range, a
// pure deletion no new range.
type Hunk struct {
	ID       string
	Kind     HunkKind
	Lines    []Line
	OldStart int
	OldEnd   int
	NewStart int
	NewEnd   int

	// InsertAfter anchors a hunk with no old range: the insertion lands
	// after this old line number, 0 meaning the start of the document.
	// Meaningful only when OldStart is zero.
	InsertAfter int
}

// NewContent returns the hunk's text after the change: every line except
// removals, joined. Accepting a change hunk replaces its old range with
// this content.
func (h Hunk) NewContent() string {
	kept := make([]string, 0, len(h.Lines))
	for _, ln := range h.Lines {
		if ln.Type == LineRemove {
			continue
		}
		kept = append(kept, ln.Content)
	}
	return JoinLines(kept)
}

// Group splits diff lines into alternating change and unchanged hunks.
// Every line within contextLines of a non-equal line belongs to a change
// hunk. Negative context clamps to zero. Empty input yields no hunks; an
// all-equal diff yields a single unchanged hunk.
func Group(lines []Line, contextLines int) []Hunk {
	if len(lines) == 0 {
		return nil
	}
	if contextLines < 0 {
		contextLines = 0
	}

	active := make([]bool, len(lines))
	for idx, ln := range lines {
		if ln.Type == LineEqual {
			continue
		}
		lo := max(idx-contextLines, 0)
		hi := min(idx+contextLines, len(lines)-1)
		for t := lo; t <= hi; t++ {
			active[t] = true
		}
	}

	var hunks []Hunk
	start := 0
	for idx := 1; idx <= len(lines); idx++ {
		if idx < len(lines) && active[idx] == active[start] {
			continue
		}
		hunks = append(hunks, buildHunk(len(hunks), lines[start:idx], active[start], lastOldLine(lines[:start])))
		start = idx
	}

	return hunks
}

// lastOldLine returns the old line number of the last line that exists
// on the old side, 0 when none does.
func lastOldLine(lines []Line) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].OldLineNum != 0 {
			return lines[i].OldLineNum
		}
	}
	return 0
}

func buildHunk(ordinal int, lines []Line, changed bool, anchor int) Hunk {
	kind := HunkUnchanged
	if changed {
		kind = HunkChange
	}

	h := Hunk{Kind: kind, Lines: lines}
	for _, ln := range lines {
		if ln.OldLineNum != 0 {
			if h.OldStart == 0 {
				h.OldStart = ln.OldLineNum
			}
			h.OldEnd = ln.OldLineNum
		}
		if ln.NewLineNum != 0 {
			if h.NewStart == 0 {
				h.NewStart = ln.NewLineNum
			}
			h.NewEnd = ln.NewLineNum
		}
	}
	if h.OldStart == 0 {
		h.InsertAfter = anchor
	}
	h.ID = hunkID(ordinal, lines)
	return h
}

// hunkID derives a stable identifier from the hunk's position and
// content. Regrouping the same diff yields the same ids, while a
// decision recorded against an outdated diff simply misses and falls
// through as a no-op.
func hunkID(ordinal int, lines []Line) string {
	hash := fnv.New32a()
	for _, ln := range lines {
		hash.Write([]byte{byte(ln.Type)})
		hash.Write([]byte(ln.Content))
		hash.Write([]byte{'\n'})
	}
	return fmt.Sprintf("h%d-%08x", ordinal, hash.Sum32())
}
