package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DocumentCompleter returns a ShellCompleteFunc that suggests documents
// with an open review session as positional completions. Set this as the
// ShellComplete field on any cli.Command that takes a document argument.
//
// When the user's last typed argument starts with "-", it falls back to
// the default flag completion behavior.
func DocumentCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		sessions, err := flags.App.Sessions.List(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, s := range sessions {
			_, _ = fmt.Fprintln(w, s.DocumentID)
		}
	}
}
