// Command docgen generates CLI reference documentation from the redline
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/commands"
)

func main() {
	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "redline",
		Usage:     "Review machine-proposed document edits hunk by hunk",
		UsageText: "redline [global options] command [command options]",
		Description: `Redline queues edits proposed by AI tools and replays them as reviewable
hunks. Nothing touches the document on disk until you accept it.

Producers register changes with 'redline propose'; you inspect and decide
them with 'redline review'. Accepted hunks are spliced into the document,
rejected ones are discarded, and a review session survives process
restarts until every hunk is decided or the review is closed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("REDLINE_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <data-dir>/redline.log)",
				Sources: cli.EnvVars("REDLINE_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("REDLINE_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("REDLINE_DATA_DIR"),
				Value:   commands.DefaultDataDir(),
			},
		},
	}

	root = commands.NewProposeCmd(flags).Register(root)
	root = commands.NewReviewCmd(flags).Register(root)
	root = commands.NewDiffCmd(flags).Register(root)
	root = commands.NewSessionsCmd(flags).Register(root)
	root = commands.NewNotificationsCmd(flags).Register(root)
	root = commands.NewDoctorCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
