package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/render"
	"github.com/hay-kot/redline/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags

	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags) *NotificationsCmd {
	return &NotificationsCmd{flags: flags}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Usage:     "Show review notifications",
		UsageText: "redline notifications [--json]",
		Description: `Lists notifications produced by review activity: resolved reviews,
dropped proposals, and sessions rebuilt after a crash.

Notifications accumulate until cleared with 'redline notifications clear'.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "clear",
				Usage:     "Clear all stored notifications",
				UsageText: "redline notifications clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	notifications, err := cmd.flags.App.Notifications.List(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, n := range notifications {
			if err := iojson.WriteLineWith(out, os.Stderr, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(notifications) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No notifications")
		return nil
	}

	r := render.New(cmd.flags.Config.Color)
	for _, n := range notifications {
		_, _ = fmt.Fprintln(out, r.Notification(n))
	}

	return nil
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, c *cli.Command) error {
	count, err := cmd.flags.App.Notifications.Count(ctx)
	if err != nil {
		return fmt.Errorf("count notifications: %w", err)
	}

	if err := cmd.flags.App.Notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "cleared %d notification(s)\n", count)
	return nil
}
