package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/core/doctor"
	"github.com/hay-kot/redline/internal/render"
	"github.com/hay-kot/redline/pkg/iojson"
)

type DoctorCmd struct {
	flags *Flags

	jsonOutput bool
}

// NewDoctorCmd creates a new doctor command.
func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

// Register adds the doctor command to the application.
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your redline setup",
		UsageText:   "redline doctor [--json]",
		Description: "Runs diagnostic checks on the configuration, data directory, and persisted stores.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output results as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.ConfigPath, cfg),
		doctor.NewDataDirCheck(cfg.DataDir, []string{
			cfg.SessionsFile(),
			cfg.ProposalsFile(),
			cfg.NotificationsFile(),
		}),
		doctor.NewStoresCheck(cmd.flags.App.Sessions, cmd.flags.App.Proposals, cmd.flags.App.Notifications),
	}

	results := doctor.RunAll(ctx, checks)

	if cmd.jsonOutput {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(results []doctor.Result) error {
	w := os.Stderr
	r := render.New(cmd.flags.Config.Color)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, r.Title("Redline Doctor"))
	_, _ = fmt.Fprintln(w, r.Rule())
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, r.Title(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + r.Muted(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = r.Success("✔")
			case doctor.StatusWarn:
				icon = r.Warning("●")
			case doctor.StatusFail:
				icon = r.Error("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	summary := fmt.Sprintf("%s  %s  %s",
		r.Success(fmt.Sprintf("%d passed", passed)),
		r.Warning(fmt.Sprintf("%d warnings", warned)),
		r.Error(fmt.Sprintf("%d failed", failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
