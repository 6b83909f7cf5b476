package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "NAUTILJON"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"planning":      "planning",
	"base-url":      "base_url",
	"keyword":       "keywords",
	"keywords-file": "keywords_file",
	"timeout":       "timeout",
	"headless":      "headless",
	"fetcher":       "fetcher",
	"user-agent":    "user_agent",
	"out":           "out",
	"format":        "format",
	"sort":          "sort",
	"metrics-file":  "metrics_file",
	"debug":         "debug",
	"log-level":     "log_level",
	"schedule":      "schedule",
	"interval":      "notify.interval",
	"transport":     "notify.transport",
}

// legacyEnv lists unprefixed variable names also accepted for credentials.
var legacyEnv = map[string]string{
	"notify.discord_webhook_url":   "DISCORD_WEBHOOK_URL",
	"notify.telegram_bot_token":    "TELEGRAM_BOT_TOKEN",
	"notify.telegram_chat_id":      "TELEGRAM_CHAT_ID",
	"notify.twitter_api_key":       "TWITTER_API_KEY",
	"notify.twitter_api_secret":    "TWITTER_API_SECRET",
	"notify.twitter_access_token":  "TWITTER_ACCESS_TOKEN",
	"notify.twitter_access_secret": "TWITTER_ACCESS_SECRET",
}

// Load builds the configuration. Precedence, highest first: changed flags,
// environment, config file, defaults. An empty path looks for
// nautiljon-planner.yaml in the working directory and ./config; a missing
// file is not an error unless path was given explicitly. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.Fetcher = strings.ToLower(strings.TrimSpace(cfg.Fetcher))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("planning", d.Planning)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("table_selector", d.TableSelector)
	v.SetDefault("keywords", d.Keywords)
	v.SetDefault("keywords_file", d.KeywordsFile)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("headless", d.Headless)
	v.SetDefault("fetcher", d.Fetcher)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("out", d.Out)
	v.SetDefault("format", d.Format)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("schedule", d.Schedule)

	v.SetDefault("notify.transport", d.Notify.Transport)
	v.SetDefault("notify.interval", d.Notify.Interval)
	v.SetDefault("notify.discord_webhook_url", "")
	v.SetDefault("notify.telegram_bot_token", "")
	v.SetDefault("notify.telegram_chat_id", "")
	v.SetDefault("notify.twitter_api_key", "")
	v.SetDefault("notify.twitter_api_secret", "")
	v.SetDefault("notify.twitter_access_token", "")
	v.SetDefault("notify.twitter_access_secret", "")
}

func bindLegacyEnv(v *viper.Viper) error {
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("nautiljon-planner")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	// --no-headless wins over --headless
	if flag := flags.Lookup("no-headless"); flag != nil && flag.Changed && flag.Value.String() == "true" {
		v.Set("headless", false)
	}
	return nil
}
