package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/hay-kot/redline/internal/redline"
)

// loadDocument resolves a path argument into the document under review.
// A missing file resolves to empty content so reviews over create
// proposals and deleted documents still work.
func loadDocument(ctx context.Context, app *redline.App, path string) (document.Document, error) {
	id := filepath.Clean(path)

	doc, err := app.Docs.Read(ctx, id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return document.Document{ID: id, Name: id}, nil
		}
		return document.Document{}, fmt.Errorf("read document: %w", err)
	}

	return doc, nil
}

// hunkJSON is the scripting-friendly JSON view of a hunk.
type hunkJSON struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	OldStart int        `json:"old_start"`
	OldEnd   int        `json:"old_end"`
	NewStart int        `json:"new_start"`
	NewEnd   int        `json:"new_end"`
	Decided  bool       `json:"decided"`
	Lines    []lineJSON `json:"lines"`
}

type lineJSON struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

func toHunkJSON(h textdiff.Hunk, decided bool) hunkJSON {
	out := hunkJSON{
		ID:       h.ID,
		Kind:     h.Kind.String(),
		OldStart: h.OldStart,
		OldEnd:   h.OldEnd,
		NewStart: h.NewStart,
		NewEnd:   h.NewEnd,
		Decided:  decided,
		Lines:    make([]lineJSON, 0, len(h.Lines)),
	}
	for _, ln := range h.Lines {
		out.Lines = append(out.Lines, lineJSON{
			Type:    ln.Type.String(),
			Content: ln.Content,
			OldLine: ln.OldLineNum,
			NewLine: ln.NewLineNum,
		})
	}
	return out
}
