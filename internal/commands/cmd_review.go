package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/hay-kot/redline/internal/redline"
	"github.com/hay-kot/redline/internal/render"
	"github.com/hay-kot/redline/pkg/iojson"
)

type ReviewCmd struct {
	flags *Flags

	// hunks / status flags
	jsonOutput bool

	// close flags
	reason string
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "review",
		Usage: "Review pending changes hunk by hunk",
		Description: `Review commands drive the hunk-by-hunk review of pending proposals.

A review session snapshots the document when it starts. Decisions are
recorded against that snapshot and the document on disk is only touched
when the review resolves: every hunk decided, accept-all, reject-all, or
an explicit close.

Typical flow:
  redline review hunks docs/plan.md          # see pending hunks
  redline review accept docs/plan.md h0-1a2b # decide one hunk
  redline review status docs/plan.md         # check progress`,
		Commands: []*cli.Command{
			cmd.startCmd(),
			cmd.statusCmd(),
			cmd.hunksCmd(),
			cmd.decideCmd("accept", "Accept a pending hunk"),
			cmd.decideCmd("reject", "Reject a pending hunk"),
			cmd.undoCmd(),
			cmd.acceptAllCmd(),
			cmd.rejectAllCmd(),
			cmd.closeCmd(),
		},
	})

	return app
}

func (cmd *ReviewCmd) startCmd() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Open a review session for a document",
		UsageText: "redline review start <document>",
		Description: `Opens (or resumes) the review session for a document, snapshotting its
current content as the baseline. Reviews also open implicitly on the
first status or decision, so start is only needed to pin the baseline
before proposals arrive.`,
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runStart,
	}
}

func (cmd *ReviewCmd) statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show review progress for a document",
		UsageText: "redline review status [--json] <document>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output status as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runStatus,
	}
}

func (cmd *ReviewCmd) hunksCmd() *cli.Command {
	return &cli.Command{
		Name:      "hunks",
		Usage:     "Show the pending hunks for a document",
		UsageText: "redline review hunks [--json] <document>",
		Description: `Renders the diff between the review's current content and the merged
pending proposals, split into hunks. Hunk ids are the handles passed to
accept and reject. Ids change whenever the diff reshapes, so always
decide against the latest listing.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output hunks as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runHunks,
	}
}

func (cmd *ReviewCmd) decideCmd(name, usage string) *cli.Command {
	return &cli.Command{
		Name:          name,
		Usage:         usage,
		UsageText:     fmt.Sprintf("redline review %s <document> <hunk-id>", name),
		ShellComplete: DocumentCompleter(cmd.flags),
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runDecide(ctx, c, name)
		},
	}
}

func (cmd *ReviewCmd) undoCmd() *cli.Command {
	return &cli.Command{
		Name:          "undo",
		Usage:         "Undo the most recent decision",
		UsageText:     "redline review undo <document>",
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runUndo,
	}
}

func (cmd *ReviewCmd) acceptAllCmd() *cli.Command {
	return &cli.Command{
		Name:          "accept-all",
		Usage:         "Accept every pending hunk and write the document",
		UsageText:     "redline review accept-all <document>",
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runAcceptAll,
	}
}

func (cmd *ReviewCmd) rejectAllCmd() *cli.Command {
	return &cli.Command{
		Name:          "reject-all",
		Usage:         "Revert the document to its baseline and drop proposals",
		UsageText:     "redline review reject-all <document>",
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runRejectAll,
	}
}

func (cmd *ReviewCmd) closeCmd() *cli.Command {
	return &cli.Command{
		Name:      "close",
		Usage:     "Close the review, keeping decisions made so far",
		UsageText: "redline review close [--reason <text>] <document>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "reason",
				Usage:       "reason recorded with the close",
				Value:       "closed",
				Destination: &cmd.reason,
			},
		},
		ShellComplete: DocumentCompleter(cmd.flags),
		Action:        cmd.runClose,
	}
}

func (cmd *ReviewCmd) runStart(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	sess, err := cmd.flags.App.Review.EnterReview(ctx, doc)
	if err != nil {
		return fmt.Errorf("start review: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "review %s started for %s\n", sess.ID, doc.ID)
	return nil
}

func (cmd *ReviewCmd) runStatus(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	status, err := cmd.flags.App.Review.Status(ctx, doc)
	if err != nil {
		return fmt.Errorf("review status: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, toStatusJSON(status))
	}

	r := render.New(cmd.flags.Config.Color)
	out := c.Root().Writer

	_, _ = fmt.Fprintln(out, r.Summary(status.DocumentID, status.Pending, status.Decided))
	if status.Recovered {
		_, _ = fmt.Fprintln(out, r.Warning("session was rebuilt from proposal content; baseline may not match the document on disk"))
	}
	if status.Complete {
		_, _ = fmt.Fprintln(out, r.Success("all changes decided; review resolves on the next decision or close"))
	}

	return nil
}

func (cmd *ReviewCmd) runHunks(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	status, err := cmd.flags.App.Review.Status(ctx, doc)
	if err != nil {
		return fmt.Errorf("review status: %w", err)
	}

	changes := make([]textdiff.Hunk, 0, len(status.Hunks))
	for _, h := range status.Hunks {
		if h.Kind == textdiff.HunkChange {
			changes = append(changes, h)
		}
	}

	if cmd.jsonOutput {
		for _, h := range changes {
			_, decided := status.Processed[h.ID]
			if err := iojson.WriteLineWith(c.Root().Writer, os.Stderr, toHunkJSON(h, decided)); err != nil {
				return err
			}
		}
		return nil
	}

	out := c.Root().Writer
	if len(changes) == 0 {
		_, _ = fmt.Fprintln(out, "no pending hunks")
		return nil
	}

	r := render.New(cmd.flags.Config.Color)
	for i, h := range changes {
		_, _ = fmt.Fprintln(out, r.Hunk(h, i+1, len(changes)))
		if _, decided := status.Processed[h.ID]; decided {
			_, _ = fmt.Fprintln(out, r.Muted("  (decided)"))
		}
		if i < len(changes)-1 {
			_, _ = fmt.Fprintln(out, r.Rule())
		}
	}

	return nil
}

func (cmd *ReviewCmd) runDecide(ctx context.Context, c *cli.Command, verb string) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	hunkID := c.Args().Get(1)
	if hunkID == "" {
		return fmt.Errorf("usage: redline review %s <document> <hunk-id>", verb)
	}

	var decided bool
	switch verb {
	case "accept":
		decided, err = cmd.flags.App.Review.AcceptHunk(ctx, doc, hunkID)
	case "reject":
		decided, err = cmd.flags.App.Review.RejectHunk(ctx, doc, hunkID)
	}
	if err != nil {
		return fmt.Errorf("%s hunk: %w", verb, err)
	}

	out := c.Root().Writer
	if !decided {
		_, _ = fmt.Fprintf(out, "hunk %s is unknown or already decided; nothing recorded\n", hunkID)
		return nil
	}

	return cmd.printProgress(ctx, c, verb, hunkID)
}

// printProgress reports the review state after a decision. A review that
// just resolved has no session left, which is the success case here.
func (cmd *ReviewCmd) printProgress(ctx context.Context, c *cli.Command, verb, hunkID string) error {
	out := c.Root().Writer
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	status, err := cmd.flags.App.Review.Status(ctx, doc)
	if errors.Is(err, redline.ErrNoReview) {
		_, _ = fmt.Fprintf(out, "%sed %s; review complete, document written\n", verb, hunkID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("review status: %w", err)
	}

	_, _ = fmt.Fprintf(out, "%sed %s; %d pending, %d decided\n", verb, hunkID, status.Pending, status.Decided)
	return nil
}

func (cmd *ReviewCmd) runUndo(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	p, ok, err := cmd.flags.App.Review.UndoLast(ctx, doc)
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}

	out := c.Root().Writer
	if !ok {
		_, _ = fmt.Fprintln(out, "nothing to undo")
		return nil
	}

	_, _ = fmt.Fprintf(out, "undid %s of %s\n", p.Kind, p.HunkID)
	return nil
}

func (cmd *ReviewCmd) runAcceptAll(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	count, err := cmd.flags.App.Review.AcceptAll(ctx, doc)
	if err != nil {
		return fmt.Errorf("accept all: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "accepted %d hunk(s); document written\n", count)
	return nil
}

func (cmd *ReviewCmd) runRejectAll(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	if err := cmd.flags.App.Review.RejectAll(ctx, doc); err != nil {
		return fmt.Errorf("reject all: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "review reverted; %s restored to its baseline\n", doc.ID)
	return nil
}

func (cmd *ReviewCmd) runClose(ctx context.Context, c *cli.Command) error {
	doc, err := requireDocument(ctx, cmd.flags, c)
	if err != nil {
		return err
	}

	if err := cmd.flags.App.Review.CloseReview(ctx, doc, cmd.reason); err != nil {
		return fmt.Errorf("close review: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "review closed for %s\n", doc.ID)
	return nil
}

// requireDocument loads the document named by the first positional arg.
func requireDocument(ctx context.Context, flags *Flags, c *cli.Command) (doc document.Document, err error) {
	path := c.Args().First()
	if path == "" {
		return doc, fmt.Errorf("missing document argument")
	}
	return loadDocument(ctx, flags.App, path)
}

// statusJSON is the JSON output format for redline review status --json.
type statusJSON struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Recovered  bool   `json:"recovered,omitempty"`
	Pending    int    `json:"pending"`
	Decided    int    `json:"decided"`
	Complete   bool   `json:"complete"`
}

func toStatusJSON(status redline.ReviewStatus) statusJSON {
	return statusJSON{
		SessionID:  status.SessionID,
		DocumentID: status.DocumentID,
		Recovered:  status.Recovered,
		Pending:    status.Pending,
		Decided:    status.Decided,
		Complete:   status.Complete,
	}
}
