package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoria/nautiljon-planner/internal/config"
	"github.com/zoria/nautiljon-planner/internal/export"
	"github.com/zoria/nautiljon-planner/internal/filter"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/pipeline"
	"github.com/zoria/nautiljon-planner/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// FetcherFactory builds the page fetcher for a run.
type FetcherFactory func(cfg *config.Config, log *logger.Logger) scraper.PageFetcher

// App holds the collaborators shared by all commands. Tests replace the
// fetcher and notifier factories and capture output.
type App struct {
	NewFetcher  FetcherFactory
	NewNotifier NotifierFactory
	Stdout      io.Writer
	Stderr      io.Writer
	Now         func() time.Time

	configPath string
	summary    string
	verbose    bool
}

// NewApp returns an App wired to the real fetchers, transports and stdio.
func NewApp() *App {
	return &App{
		NewFetcher:  DefaultFetcher,
		NewNotifier: DefaultNotifier,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Now:         time.Now,
	}
}

// DefaultFetcher picks the browser or HTTP fetcher from the configuration.
func DefaultFetcher(cfg *config.Config, log *logger.Logger) scraper.PageFetcher {
	if cfg.Fetcher == config.FetcherHTTP {
		return scraper.NewHTTPFetcher(cfg.UserAgent, nil).
			WithSelector(cfg.TableSelector).
			WithLogger(log)
	}

	f := scraper.NewBrowserFetcher(cfg.Headless)
	f.UserAgent = cfg.UserAgent
	f.Selector = cfg.TableSelector
	f.Debug = cfg.Debug
	f.Log = log
	return f
}

// NewRootCmd creates the root command
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nautiljon-planner",
		Short: "Export the Nautiljon release planning",
		Long: `Fetch the Nautiljon manga or light novel release planning, keep the
releases matching your keywords and write them as JSON, CSV or an iCalendar file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runExport,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.configPath, "config", "", "Config file (default ./nautiljon-planner.yaml)")
	pf.String("planning", "manga", "Planning to fetch: manga or ln")
	pf.String("base-url", scraper.BaseURL, "Site base URL")
	pf.StringSlice("keyword", nil, "Keyword to keep (repeatable, comma separated)")
	pf.String("keywords-file", "", "File with one keyword per line")
	pf.Int("timeout", int(scraper.Timeout/time.Second), "Page load timeout in seconds")
	pf.Bool("headless", true, "Run the browser headless")
	pf.Bool("no-headless", false, "Show the browser window")
	pf.String("fetcher", config.FetcherBrowser, "Page fetcher: browser or http")
	pf.String("user-agent", scraper.UserAgent, "User agent sent to the site")
	pf.String("out", "", "Output path (default planning_<timestamp>.<format>)")
	pf.String("format", string(export.FormatICS), "Output format: json, csv or ics")
	pf.String("sort", "table", "Record order: table, date or title")
	pf.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-level", "info", "Minimum log level: debug, info, warn or error")

	cmd.Flags().StringVar(&app.summary, "summary", string(SummaryText), "Summary printed after the export: text, json or none")
	cmd.Flags().BoolVar(&app.verbose, "verbose", false, "List the exported releases in the summary")

	cmd.AddCommand(newNotifyCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// runExport is the root command logic
func (app *App) runExport(cmd *cobra.Command, args []string) error {
	summaryFormat, err := ParseSummaryFormat(app.summary)
	if err != nil {
		return err
	}

	r, err := app.newRun(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	summary, err := app.exportOnce(cmd.Context(), r)
	if err != nil {
		return err
	}

	return WriteSummary(app.Stdout, summary, summaryFormat, app.verbose)
}

// run bundles the per-run state built from configuration.
type run struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	pipe    *pipeline.Pipeline
}

func (app *App) newRun(cmd *cobra.Command) (*run, error) {
	cfg, err := config.Load(app.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return app.newRunFromConfig(cfg)
}

// newLogger creates the run logger and installs it as the default.
func (app *App) newLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = logger.LevelDebug
	}
	log := logger.New(level, app.Stderr)
	logger.SetDefault(log)
	return log
}

func (app *App) newRunFromConfig(cfg *config.Config) (*run, error) {
	log := app.newLogger(cfg)

	keywords, err := cfg.AllKeywords()
	if err != nil {
		return nil, err
	}
	order, err := cfg.SortOrder()
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	kf := filter.NewKeywordFilter(keywords)
	kf.Metrics = m

	return &run{
		cfg:     cfg,
		log:     log,
		metrics: m,
		pipe: &pipeline.Pipeline{
			Fetcher: app.NewFetcher(cfg, log),
			URL:     cfg.PlanningURL(),
			BaseURL: cfg.BaseURL,
			Timeout: cfg.TimeoutDuration(),
			Filter:  kf,
			Order:   order,
			Log:     log,
			Metrics: m,
		},
	}, nil
}

// close writes the metrics file, if configured, and flushes the logger.
func (r *run) close() {
	if r.cfg.MetricsFile != "" {
		if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
			r.log.Error("Failed to write metrics file", logger.Fields{"path": r.cfg.MetricsFile}, err)
		}
	}
	_ = r.log.Sync()
}

func (app *App) exportOnce(ctx context.Context, r *run) (*Summary, error) {
	format, err := r.cfg.OutputFormat()
	if err != nil {
		return nil, err
	}

	checkedAt := app.Now()
	path := r.cfg.Out
	if path == "" {
		path = export.DefaultPath(format, checkedAt)
	}

	records, err := r.pipe.Collect(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.pipe.ExportRecords(records, path, format)
	if err != nil {
		return nil, err
	}

	return &Summary{
		CheckedAt: checkedAt.UTC(),
		Planning:  r.cfg.Planning,
		URL:       r.pipe.URL,
		Path:      result.Path,
		Format:    string(result.Format),
		Count:     result.Records,
		Events:    result.Events,
		Keywords:  r.pipe.Filter.Keywords(),
		Releases:  records,
	}, nil
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	return ExecuteApp(ctx, NewApp(), args)
}

// ExecuteApp runs the CLI with the given App
func ExecuteApp(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(app.Stderr, "Error: %v\n", err)
		if errors.Is(err, scraper.ErrTableNotFound) {
			fmt.Fprintln(app.Stderr, "The planning table did not load in time; try a larger --timeout.")
		}
		return ExitError
	}
	return ExitSuccess
}
