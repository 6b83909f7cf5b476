// Package config loads planner settings from a YAML file, NAUTILJON_*
// environment variables (with .env support) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zoria/nautiljon-planner/internal/export"
	"github.com/zoria/nautiljon-planner/internal/filter"
	"github.com/zoria/nautiljon-planner/internal/release"
	"github.com/zoria/nautiljon-planner/internal/scraper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Fetcher backends.
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// Notification transports.
const (
	TransportDiscord  = "discord"
	TransportTelegram = "telegram"
	TransportTwitter  = "twitter"
	TransportDryRun   = "dry-run"
)

// Config holds the settings of one planner run.
type Config struct {
	Planning      string   `mapstructure:"planning"`
	BaseURL       string   `mapstructure:"base_url"`
	TableSelector string   `mapstructure:"table_selector"`
	Keywords      []string `mapstructure:"keywords"`
	KeywordsFile  string   `mapstructure:"keywords_file"`
	Timeout       int      `mapstructure:"timeout"` // seconds
	Headless      bool     `mapstructure:"headless"`
	Fetcher       string   `mapstructure:"fetcher"`
	UserAgent     string   `mapstructure:"user_agent"`

	Out         string `mapstructure:"out"`
	Format      string `mapstructure:"format"`
	Sort        string `mapstructure:"sort"`
	MetricsFile string `mapstructure:"metrics_file"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"` // debug, info, warn or error; --debug wins
	Schedule    string `mapstructure:"schedule"`

	Notify NotifyConfig `mapstructure:"notify"`
}

// NotifyConfig holds the notification transport settings.
type NotifyConfig struct {
	Transport         string        `mapstructure:"transport"`
	Interval          time.Duration `mapstructure:"interval"`
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
	TelegramBotToken  string        `mapstructure:"telegram_bot_token"`
	TelegramChatID    string        `mapstructure:"telegram_chat_id"`

	TwitterAPIKey       string `mapstructure:"twitter_api_key"`
	TwitterAPISecret    string `mapstructure:"twitter_api_secret"`
	TwitterAccessToken  string `mapstructure:"twitter_access_token"`
	TwitterAccessSecret string `mapstructure:"twitter_access_secret"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Planning:      string(scraper.PlanningManga),
		BaseURL:       scraper.BaseURL,
		TableSelector: scraper.TableSelector,
		Keywords:      []string{},
		Timeout:       int(scraper.Timeout / time.Second),
		Headless:      true,
		Fetcher:       FetcherBrowser,
		UserAgent:     scraper.UserAgent,
		Format:        string(export.FormatICS),
		Sort:          string(release.SortByTable),
		Schedule:      "0 8 * * *",
		LogLevel:      "info",
		Notify: NotifyConfig{
			Transport: TransportDiscord,
			Interval:  time.Second,
		},
	}
}

// Validate checks enumerated values and numeric bounds.
func (c *Config) Validate() error {
	if _, err := scraper.ParsePlanning(c.Planning); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalid)
	}
	if c.TableSelector == "" {
		return fmt.Errorf("%w: table_selector is required", ErrInvalid)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalid, c.Timeout)
	}
	switch c.Fetcher {
	case FetcherBrowser, FetcherHTTP:
	default:
		return fmt.Errorf("%w: fetcher %q (must be 'browser' or 'http')", ErrInvalid, c.Fetcher)
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := release.ParseSortOrder(c.Sort); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Notify.Transport {
	case TransportDiscord, TransportTelegram, TransportTwitter, TransportDryRun:
	default:
		return fmt.Errorf("%w: notify.transport %q", ErrInvalid, c.Notify.Transport)
	}
	if c.Notify.Interval < 0 {
		return fmt.Errorf("%w: notify.interval must not be negative", ErrInvalid)
	}
	return nil
}

// ValidateSchedule checks the cron expression used by the watch command.
func (c *Config) ValidateSchedule() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("%w: schedule %q: %w", ErrInvalid, c.Schedule, err)
	}
	return nil
}

// TimeoutDuration returns the fetch timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// PlanningURL returns the address of the configured planning page.
func (c *Config) PlanningURL() string {
	planning, err := scraper.ParsePlanning(c.Planning)
	if err != nil {
		planning = scraper.PlanningManga
	}
	return planning.URL(c.BaseURL)
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (export.Format, error) {
	return export.ParseFormat(c.Format)
}

// SortOrder returns the parsed sort order.
func (c *Config) SortOrder() (release.SortOrder, error) {
	return release.ParseSortOrder(c.Sort)
}

// AllKeywords returns the configured keywords followed by those read from
// keywords_file, if set.
func (c *Config) AllKeywords() ([]string, error) {
	keywords := append([]string{}, c.Keywords...)
	if strings.TrimSpace(c.KeywordsFile) == "" {
		return keywords, nil
	}

	fromFile, err := filter.LoadKeywordsFile(c.KeywordsFile)
	if err != nil {
		return nil, err
	}
	return append(keywords, fromFile...), nil
}
