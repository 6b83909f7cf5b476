package cli

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/zoria/nautiljon-planner/internal/config"
	"github.com/zoria/nautiljon-planner/internal/logger"
)

type watchOptions struct {
	runNow bool
}

func newWatchCmd(app *App) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Export the planning periodically on a cron schedule",
		Long: `Run the export on a cron schedule (standard five-field syntax or
descriptors such as @daily) until interrupted. Each run fetches the page again
and writes a new file; a failed run is logged and the schedule continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWatch(cmd, opts)
		},
	}

	cmd.Flags().String("schedule", config.DefaultConfig().Schedule, "Cron schedule")
	cmd.Flags().BoolVar(&opts.runNow, "run-now", false, "Run once immediately before waiting for the schedule")

	return cmd
}

func (app *App) runWatch(cmd *cobra.Command, opts *watchOptions) error {
	cfg, err := config.Load(app.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateSchedule(); err != nil {
		return err
	}

	log := app.newLogger(cfg).With(logger.Fields{"schedule": cfg.Schedule})
	defer log.Sync()

	ctx := cmd.Context()
	job := func() {
		app.watchRun(ctx, cfg)
	}

	c := cron.New(cron.WithLogger(cronLogger{log: log}))
	if _, err := c.AddFunc(cfg.Schedule, job); err != nil {
		return err
	}

	log.Info("Watching planning", logger.Fields{
		"url": cfg.PlanningURL(),
	})

	if opts.runNow {
		job()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	log.Info("Watch stopped", nil)
	return nil
}

// watchRun performs one scheduled export with fresh per-run state.
func (app *App) watchRun(ctx context.Context, cfg *config.Config) {
	if ctx.Err() != nil {
		return
	}

	r, err := app.newRunFromConfig(cfg)
	if err != nil {
		logger.Error("Scheduled run setup failed", nil, err)
		return
	}
	defer r.close()

	summary, err := app.exportOnce(ctx, r)
	if err != nil {
		r.log.Error("Scheduled export failed", nil, err)
		return
	}
	r.log.Info("Scheduled export finished", logger.Fields{
		"path":    summary.Path,
		"records": summary.Count,
	})
}

// cronLogger adapts the logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(keysAndValues []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
