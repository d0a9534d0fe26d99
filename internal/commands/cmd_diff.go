package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/hay-kot/redline/internal/render"
	"github.com/hay-kot/redline/pkg/iojson"
)

type DiffCmd struct {
	flags *Flags

	contextLines int
	jsonOutput   bool
}

// NewDiffCmd creates a new diff command.
func NewDiffCmd(flags *Flags) *DiffCmd {
	return &DiffCmd{flags: flags}
}

// Register adds the diff command to the application.
func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "diff",
		Usage:     "Diff two files with the review hunk grouping",
		UsageText: "redline diff [--context N] [--json] <original> <modified>",
		Description: `One-shot diff of two files using the same line differ and hunk grouping
the review engine uses, so the hunks shown here are exactly the hunks a
review of that change would produce. Missing files diff as empty.

Examples:
  redline diff old.md new.md
  redline diff --context 1 old.md new.md
  redline diff --json old.md new.md | jq .id`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "context",
				Aliases:     []string{"C"},
				Usage:       "unchanged lines to keep around each change",
				Value:       3,
				Destination: &cmd.contextLines,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output hunks as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DiffCmd) run(_ context.Context, c *cli.Command) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: redline diff <original> <modified>")
	}

	original, err := readFileOrEmpty(c.Args().Get(0))
	if err != nil {
		return err
	}
	modified, err := readFileOrEmpty(c.Args().Get(1))
	if err != nil {
		return err
	}

	hunks := textdiff.Group(textdiff.Diff(original, modified), cmd.contextLines)

	var changes []textdiff.Hunk
	for _, h := range hunks {
		if h.Kind == textdiff.HunkChange {
			changes = append(changes, h)
		}
	}

	if cmd.jsonOutput {
		for _, h := range changes {
			if err := iojson.WriteLineWith(c.Root().Writer, os.Stderr, toHunkJSON(h, false)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(changes) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "files are identical")
		return nil
	}

	r := render.New(cmd.flags.Config.Color)
	out := c.Root().Writer
	for i, h := range changes {
		_, _ = fmt.Fprintln(out, r.Hunk(h, i+1, len(changes)))
		if i < len(changes)-1 {
			_, _ = fmt.Fprintln(out, r.Rule())
		}
	}

	return nil
}

// readFileOrEmpty reads a file, treating a missing file as empty so new
// and deleted documents can be diffed against nothing.
func readFileOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
