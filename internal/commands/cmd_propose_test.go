package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/hay-kot/redline/internal/core/proposal"
)

func TestPropose_TargetFileInfersOverwrite(t *testing.T) {
	flags := newTestFlags(t)

	writeWorkFile(t, "notes.md", "alpha\nbeta\n")
	writeWorkFile(t, "revised.md", "alpha\nBETA\n")

	out, err := runCLI(flags, "propose", "--target", "revised.md", "notes.md")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if !strings.Contains(out, "registered: overwrite notes.md") {
		t.Errorf("unexpected propose output: %q", out)
	}

	changes, err := flags.App.Proposals.ForDocument(context.Background(), "notes.md")
	if err != nil {
		t.Fatalf("failed to read proposals: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 stored proposal, got %d", len(changes))
	}

	change := changes[0]
	if change.Kind != proposal.KindOverwrite {
		t.Errorf("kind = %q, want overwrite", change.Kind)
	}
	if change.OriginalContent != "alpha\nbeta\n" {
		t.Errorf("original content not snapshotted, got %q", change.OriginalContent)
	}
	if change.TargetContent != "alpha\nBETA\n" {
		t.Errorf("target content = %q", change.TargetContent)
	}
	if change.ID == "" || change.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamp to be filled in, got %q / %v", change.ID, change.CreatedAt)
	}
}

func TestPropose_MissingDocumentInfersCreate(t *testing.T) {
	flags := newTestFlags(t)

	writeWorkFile(t, "draft.md", "hello\n")

	out, err := runCLI(flags, "propose", "--target", "draft.md", "docs/new.md")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if !strings.Contains(out, "registered: create docs/new.md") {
		t.Errorf("unexpected propose output: %q", out)
	}
}

func TestPropose_RenameKind(t *testing.T) {
	flags := newTestFlags(t)

	writeWorkFile(t, "notes.md", "alpha\n")

	out, err := runCLI(flags, "propose", "--rename", "archive/notes.md", "notes.md")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if !strings.Contains(out, "registered: rename notes.md") {
		t.Errorf("unexpected propose output: %q", out)
	}

	changes, err := flags.App.Proposals.ForDocument(context.Background(), "notes.md")
	if err != nil {
		t.Fatalf("failed to read proposals: %v", err)
	}
	if len(changes) != 1 || changes[0].NewPath != "archive/notes.md" {
		t.Fatalf("expected rename proposal with new path, got %+v", changes)
	}
}

func TestPropose_JSONFile(t *testing.T) {
	flags := newTestFlags(t)

	writeWorkFile(t, "notes.md", "alpha\nbeta\ngamma\n")
	writeWorkFile(t, "change.json", `{
  "kind": "patch",
  "document_id": "notes.md",
  "path": "notes.md",
  "original_content": "alpha\nbeta\ngamma\n",
  "edits": [{"start_line": 2, "end_line": 2, "content": "BETA"}]
}`)

	out, err := runCLI(flags, "propose", "-f", "change.json")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if !strings.Contains(out, "registered: patch notes.md") {
		t.Errorf("unexpected propose output: %q", out)
	}

	hunks := pendingHunks(t, flags, "notes.md")
	if len(hunks) != 1 {
		t.Fatalf("expected 1 pending hunk from the patch, got %d", len(hunks))
	}
}

func TestPropose_RequiresExactlyOneMode(t *testing.T) {
	flags := newTestFlags(t)

	writeWorkFile(t, "notes.md", "alpha\n")

	_, err := runCLI(flags, "propose", "notes.md")
	if err == nil || !strings.Contains(err.Error(), "exactly one of") {
		t.Errorf("expected mode error, got %v", err)
	}

	writeWorkFile(t, "revised.md", "beta\n")
	_, err = runCLI(flags, "propose", "--target", "revised.md", "--delete", "notes.md")
	if err == nil || !strings.Contains(err.Error(), "exactly one of") {
		t.Errorf("expected mode error for conflicting flags, got %v", err)
	}
}

func TestPropose_ExcludedDocumentRejected(t *testing.T) {
	flags := newTestFlags(t)
	flags.Config.Review.Exclude = []string{"vendor/**"}

	writeWorkFile(t, "draft.md", "hello\n")

	_, err := runCLI(flags, "propose", "--target", "draft.md", "vendor/lib.md")
	if err == nil || !strings.Contains(err.Error(), "excluded by review patterns") {
		t.Errorf("expected exclusion error, got %v", err)
	}
}
