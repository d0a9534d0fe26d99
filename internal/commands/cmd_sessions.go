package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/review"
	"github.com/hay-kot/redline/internal/store/jsonfile"
	"github.com/hay-kot/redline/pkg/iojson"
)

type SessionsCmd struct {
	flags *Flags

	jsonOutput bool
	watch      bool
}

// NewSessionsCmd creates a new sessions command.
func NewSessionsCmd(flags *Flags) *SessionsCmd {
	return &SessionsCmd{flags: flags}
}

// Register adds the sessions command to the application.
func (cmd *SessionsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sessions",
		Usage:     "List open review sessions",
		UsageText: "redline sessions [--json] [--watch]",
		Description: `Displays a table of persisted review sessions with their document,
decision count, and last update.

Use --json for one JSON record per line, or --watch to re-render the
table whenever the session store changes on disk.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Aliases:     []string{"w"},
				Usage:       "re-render when the session store changes",
				Destination: &cmd.watch,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "prune",
				Usage:     "Delete sessions whose document is gone or renamed",
				UsageText: "redline sessions prune",
				Description: `Removes persisted sessions that can never be resumed: the document no
longer exists, or its identity no longer matches the one the session
was created with.`,
				Action: cmd.runPrune,
			},
		},
	})

	return app
}

func (cmd *SessionsCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := cmd.printSessions(ctx, c); err != nil {
		return err
	}

	if !cmd.watch {
		return nil
	}

	watcher, err := jsonfile.NewStoreWatcher(cmd.flags.Config.DataDir)
	if err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	events, err := watcher.Watch(ctx, "sessions.json")
	if err != nil {
		return fmt.Errorf("watch sessions: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			cmd.flags.App.Bus.PublishStoreChanged(eventbus.StoreChangedPayload{File: ev.File, Op: ev.Op})

			_, _ = fmt.Fprintln(c.Root().Writer)
			if err := cmd.printSessions(ctx, c); err != nil {
				return err
			}
		}
	}
}

func (cmd *SessionsCmd) printSessions(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.flags.App.Sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, s := range sessions {
			if err := iojson.WriteLineWith(out, os.Stderr, toSessionInfo(s)); err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
		}
		return nil
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No open sessions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DOCUMENT\tSESSION\tDECISIONS\tUPDATED")

	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			s.DocumentID, s.ID, len(s.Queue), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func (cmd *SessionsCmd) runPrune(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.flags.App.Sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	pruned := 0
	for _, s := range sessions {
		stale, err := cmd.isStale(ctx, s)
		if err != nil {
			return err
		}
		if !stale {
			continue
		}

		if err := cmd.flags.App.Sessions.Delete(ctx, s.DocumentID); err != nil {
			return fmt.Errorf("delete session %s: %w", s.ID, err)
		}
		pruned++
	}

	out := c.Root().Writer
	if pruned == 0 {
		_, _ = fmt.Fprintln(out, "no stale sessions")
		return nil
	}

	_, _ = fmt.Fprintf(out, "pruned %d stale session(s)\n", pruned)
	return nil
}

func (cmd *SessionsCmd) isStale(ctx context.Context, s review.Session) (bool, error) {
	doc, err := cmd.flags.App.Docs.Read(ctx, s.DocumentID)
	if errors.Is(err, document.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read document %s: %w", s.DocumentID, err)
	}

	return doc.Name != s.SourceIdentity, nil
}

// sessionInfo is the JSON output format for redline sessions --json.
type sessionInfo struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Identity   string    `json:"identity"`
	Decisions  int       `json:"decisions"`
	Recovered  bool      `json:"recovered,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toSessionInfo(s review.Session) sessionInfo {
	return sessionInfo{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Identity:   s.SourceIdentity,
		Decisions:  len(s.Queue),
		Recovered:  s.Recovered,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
