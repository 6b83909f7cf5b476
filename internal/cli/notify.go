package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoria/nautiljon-planner/internal/config"
	"github.com/zoria/nautiljon-planner/internal/export"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/notifier"
	"github.com/zoria/nautiljon-planner/internal/release"
	"github.com/zoria/nautiljon-planner/internal/telegram"
)

// NotifierFactory builds the notification transport for a run.
type NotifierFactory func(cfg *config.Config, out io.Writer) (notifier.Notifier, error)

// DefaultNotifier creates the transport named by notify.transport.
func DefaultNotifier(cfg *config.Config, out io.Writer) (notifier.Notifier, error) {
	n := cfg.Notify
	switch n.Transport {
	case config.TransportDiscord:
		return notifier.NewDiscordNotifier(n.DiscordWebhookURL, nil)
	case config.TransportTelegram:
		return telegram.NewClient(n.TelegramBotToken, n.TelegramChatID)
	case config.TransportTwitter:
		return notifier.NewTwitterNotifier(notifier.TwitterCredentials{
			APIKey:       n.TwitterAPIKey,
			APISecret:    n.TwitterAPISecret,
			AccessToken:  n.TwitterAccessToken,
			AccessSecret: n.TwitterAccessSecret,
		})
	case config.TransportDryRun:
		return notifier.NewDryRunNotifier(out), nil
	default:
		return nil, fmt.Errorf("%w: notify.transport %q", config.ErrInvalid, n.Transport)
	}
}

type notifyOptions struct {
	fromFile string
	max      int
	dryRun   bool
}

func newNotifyCmd(app *App) *cobra.Command {
	opts := &notifyOptions{}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post each matching release as a chat notification",
		Long: `Fetch the planning (or read a JSON export with --from-file), keep the
releases matching your keywords and post one notification per release to
Discord, Telegram or Twitter. Failed posts are reported but do not stop the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNotify(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.fromFile, "from-file", "", "Replay releases from a JSON export instead of fetching")
	cmd.Flags().IntVar(&opts.max, "max", 0, "Maximum number of notifications to send (0 = no limit)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print notifications without sending")
	cmd.Flags().String("transport", config.TransportDiscord, "Transport: discord, telegram, twitter or dry-run")
	cmd.Flags().Duration("interval", 0, "Pause between two notifications (default from config)")

	return cmd
}

func (app *App) runNotify(cmd *cobra.Command, opts *notifyOptions) error {
	r, err := app.newRun(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	if opts.dryRun {
		r.cfg.Notify.Transport = config.TransportDryRun
	}
	n, err := app.NewNotifier(r.cfg, app.Stdout)
	if err != nil {
		return fmt.Errorf("creating %s notifier: %w", r.cfg.Notify.Transport, err)
	}

	var records []*release.Record
	if opts.fromFile != "" {
		records, err = loadRecords(opts.fromFile, r)
	} else {
		records, err = r.pipe.Collect(cmd.Context())
	}
	if err != nil {
		return err
	}

	report := r.pipe.NotifyRecords(cmd.Context(), n, records, notifier.DispatchOptions{
		Interval: r.cfg.Notify.Interval,
		Max:      opts.max,
	})

	fmt.Fprintf(app.Stdout, "Sent %d/%d notifications via %s\n", report.Sent, report.Attempted, r.cfg.Notify.Transport)
	for _, f := range report.Failures {
		fmt.Fprintf(app.Stdout, "  FAILED: %s: %v\n", f.Title, f.Err)
	}
	if report.Err != nil {
		return fmt.Errorf("notification dispatch interrupted: %w", report.Err)
	}
	return nil
}

// loadRecords reads a JSON export and applies the run's filter and order.
func loadRecords(path string, r *run) ([]*release.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := export.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	r.log.Info("Loaded releases from file", logger.Fields{
		"path":    path,
		"records": len(records),
	})

	kept := r.pipe.Filter.Apply(records)
	return release.Sort(kept, r.pipe.Order), nil
}
