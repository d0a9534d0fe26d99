package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/redline/internal/commands"
	"github.com/hay-kot/redline/internal/core/config"
	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/logging"
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/redline"
	"github.com/hay-kot/redline/internal/store/docfile"
	"github.com/hay-kot/redline/internal/store/jsonfile"
	"github.com/hay-kot/redline/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		busCancel context.CancelFunc
		saverStop func()
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "redline",
		Usage:     "Review machine-proposed document edits hunk by hunk",
		UsageText: "redline [global options] command [command options]",
		Description: `Redline queues edits proposed by AI tools and replays them as reviewable
hunks. Nothing touches the document on disk until you accept it.

Producers register changes with 'redline propose'; you inspect and decide
them with 'redline review'. Accepted hunks are spliced into the document,
rejected ones are discarded, and a review session survives process
restarts until every hunk is decided or the review is closed.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REDLINE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/redline.log)",
				Sources:     cli.EnvVars("REDLINE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REDLINE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REDLINE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/redline.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "redline.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, false)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Create stores
			docs := docfile.New()
			sessions := jsonfile.NewSessionStore(cfg.SessionsFile())
			proposals := jsonfile.NewProposalStore(cfg.ProposalsFile())
			notifications := jsonfile.NewNotificationStore(cfg.NotificationsFile())

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

			flags.App = redline.NewApp(cfg, bus, docs, sessions, proposals, notifications, log.Logger)

			// Route domain events into stored notifications the CLI can list.
			eventbus.NewNotificationRouter(bus).Register()
			bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
				_, err := notifications.Save(context.Background(), notify.Notification{
					Level:     p.Level,
					Message:   p.Message,
					CreatedAt: time.Now().UTC(),
				})
				if err != nil {
					log.Warn().Err(err).Msg("persist notification")
				}
			})

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			saverStop = flags.App.Saver.Start(busCtx)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Drain pending session writes before the dispatch loop stops
			if saverStop != nil {
				saverStop()
			}

			if busCancel != nil {
				busCancel()
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewProposeCmd(flags).Register(app)
	app = commands.NewReviewCmd(flags).Register(app)
	app = commands.NewDiffCmd(flags).Register(app)
	app = commands.NewSessionsCmd(flags).Register(app)
	app = commands.NewNotificationsCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
