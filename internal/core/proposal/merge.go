package proposal

import (
	"sort"

	"github.com/hay-kot/redline/internal/core/textdiff"
)

// MergeResult is the folded outcome of stacked proposals plus the
// changes that could not be applied.
type MergeResult struct {
	Content string
	Skipped []ProposedChange
}

// Merge folds every change, oldest first, into one target content so a
// stack of proposals reviews as a single coherent diff. The fold is
// total: invalid changes are skipped and reported, never fatal.
//
// Fold rules: overwrite replaces the accumulated content verbatim (last
// write wins); patch applies its edits bottom-up so an earlier splice
// cannot shift a later edit's range; create is valid only as the first
// change for a document that does not exist yet, where it acts as an
// overwrite; delete empties the content; rename leaves content alone.
// Equal timestamps keep the given order.
func Merge(base string, docExists bool, changes []ProposedChange) MergeResult {
	ordered := make([]ProposedChange, len(changes))
	copy(ordered, changes)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].CreatedAt.Before(ordered[b].CreatedAt)
	})

	res := MergeResult{Content: base}
	folded := false

	for _, change := range ordered {
		switch change.Kind {
		case KindOverwrite:
			res.Content = change.TargetContent
		case KindPatch:
			res.Content = applyEdits(res.Content, change.Edits)
		case KindCreate:
			if docExists || folded {
				res.Skipped = append(res.Skipped, change)
				continue
			}
			res.Content = change.TargetContent
		case KindDelete:
			res.Content = ""
		case KindRename:
			// Identity-only; the session layer handles the path move.
		default:
			res.Skipped = append(res.Skipped, change)
			continue
		}
		folded = true
	}

	return res
}

// applyEdits splices the edits in descending start order.
func applyEdits(content string, edits []LineEdit) string {
	ordered := make([]LineEdit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].StartLine > ordered[b].StartLine
	})

	for _, e := range ordered {
		content = textdiff.Splice(content, e.StartLine, e.EndLine, e.Content)
	}
	return content
}
