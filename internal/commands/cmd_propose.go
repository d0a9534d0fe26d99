package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/pkg/iojson"
)

type ProposeCmd struct {
	flags *Flags

	// structured change input (no document argument)
	fileReader iojson.FileReader[proposal.ProposedChange]

	// inferred-kind flags (document argument)
	targetFile string
	fromStdin  bool
	deleteDoc  bool
	renameTo   string
}

// NewProposeCmd creates a new propose command.
func NewProposeCmd(flags *Flags) *ProposeCmd {
	return &ProposeCmd{flags: flags}
}

// Register adds the propose command to the application.
func (cmd *ProposeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "propose",
		Usage:     "Register a pending change for review",
		UsageText: "redline propose [options] [document]",
		Description: `Registers a proposed change. The change stays pending until it is
reviewed; the document on disk is never touched by propose.

With a document argument the change kind is inferred: --target and
--overwrite-stdin propose new content (a create when the document does
not exist yet), --delete proposes removal, --rename proposes a move.

Without a document argument a full change is read as JSON from --file or
stdin, which is how automated producers integrate:

  {"kind": "patch", "document_id": "docs/plan.md", "path": "docs/plan.md",
   "original_content": "...", "edits": [{"start_line": 3, "end_line": 5, "content": "..."}]}

Examples:
  redline propose --target revised.md docs/plan.md
  cat revised.md | redline propose --overwrite-stdin docs/plan.md
  redline propose --rename docs/new.md docs/old.md
  redline propose --delete docs/stale.md
  redline propose -f change.json
  producer | redline propose`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "target",
				Aliases:     []string{"t"},
				Usage:       "file holding the proposed content",
				Destination: &cmd.targetFile,
			},
			&cli.BoolFlag{
				Name:        "overwrite-stdin",
				Usage:       "read the proposed content from stdin",
				Destination: &cmd.fromStdin,
			},
			&cli.BoolFlag{
				Name:        "delete",
				Usage:       "propose deleting the document",
				Destination: &cmd.deleteDoc,
			},
			&cli.StringFlag{
				Name:        "rename",
				Usage:       "propose renaming the document to this path",
				Destination: &cmd.renameTo,
			},
			cmd.fileReader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ProposeCmd) run(ctx context.Context, c *cli.Command) error {
	var (
		change proposal.ProposedChange
		err    error
	)

	if c.NArg() == 0 {
		change, err = cmd.fileReader.Read()
		if err != nil {
			return fmt.Errorf("read change: %w", err)
		}
	} else {
		change, err = cmd.buildChange(ctx, c.Args().First())
		if err != nil {
			return err
		}
	}

	stored, err := cmd.flags.App.Review.Propose(ctx, change)
	if err != nil {
		return fmt.Errorf("propose change: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "proposal %s registered: %s %s\n", stored.ID, stored.Kind, stored.DocumentID)
	return nil
}

// buildChange assembles a change from the inferred-kind flags.
func (cmd *ProposeCmd) buildChange(ctx context.Context, path string) (proposal.ProposedChange, error) {
	modes := 0
	for _, set := range []bool{cmd.targetFile != "", cmd.fromStdin, cmd.deleteDoc, cmd.renameTo != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return proposal.ProposedChange{}, fmt.Errorf("exactly one of --target, --overwrite-stdin, --delete, --rename is required")
	}

	id := filepath.Clean(path)

	existing, err := cmd.flags.App.Docs.Read(ctx, id)
	exists := err == nil
	if err != nil && !errors.Is(err, document.ErrNotFound) {
		return proposal.ProposedChange{}, fmt.Errorf("read document: %w", err)
	}

	var (
		kind    proposal.Kind
		target  string
		newPath string
	)

	switch {
	case cmd.deleteDoc:
		kind = proposal.KindDelete
	case cmd.renameTo != "":
		kind = proposal.KindRename
		newPath = filepath.Clean(cmd.renameTo)
	case cmd.targetFile != "":
		data, err := os.ReadFile(cmd.targetFile)
		if err != nil {
			return proposal.ProposedChange{}, fmt.Errorf("read target file: %w", err)
		}
		kind, target = proposal.KindOverwrite, string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return proposal.ProposedChange{}, fmt.Errorf("read stdin: %w", err)
		}
		kind, target = proposal.KindOverwrite, string(data)
	}

	if kind == proposal.KindOverwrite && !exists {
		kind = proposal.KindCreate
	}

	change := proposal.New(kind, id, id)
	change.OriginalContent = existing.Content
	change.TargetContent = target
	change.NewPath = newPath

	return change, nil
}
