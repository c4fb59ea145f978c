package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling"
)

type config struct {
	Site struct {
		Name        string `mapstructure:"name"`
		URL         string `mapstructure:"url" validate:"required,url"`
		Description string `mapstructure:"description"`
		Author      string `mapstructure:"author"`
		Locale      string `mapstructure:"locale" validate:"required,bcp47_language_tag"`
		Timezone    string `mapstructure:"timezone" validate:"required,timezone"`
	} `mapstructure:"site"`

	Prismic struct {
		Endpoint    string        `mapstructure:"endpoint" validate:"required,url"`
		AccessToken string        `mapstructure:"access_token"`
		Lang        string        `mapstructure:"lang"`
		Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	} `mapstructure:"prismic"`

	Server struct {
		Addr            string        `mapstructure:"addr" validate:"required"`
		SessionSecret   string        `mapstructure:"session_secret" validate:"omitempty,min=16"`
		CookieSecure    bool          `mapstructure:"cookie_secure"`
		LoadMoreLimit   int           `mapstructure:"load_more_limit" validate:"gte=0"`
		LoadMoreWindow  time.Duration `mapstructure:"load_more_window" validate:"gte=0"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	} `mapstructure:"server"`

	Build struct {
		OutputDir   string `mapstructure:"output_dir" validate:"required"`
		Concurrency int    `mapstructure:"concurrency" validate:"gte=0"`
	} `mapstructure:"build"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
		Format string `mapstructure:"format" validate:"oneof=json console"`
	} `mapstructure:"log"`
}

var defaults = map[string]any{
	"site.name":               "spacetraveling",
	"site.url":                "http://localhost:3000",
	"site.description":        "",
	"site.author":             "",
	"site.locale":             "pt-BR",
	"site.timezone":           "UTC",
	"prismic.endpoint":        "",
	"prismic.access_token":    "",
	"prismic.lang":            "",
	"prismic.timeout":         "10s",
	"server.addr":             ":3000",
	"server.session_secret":   "",
	"server.cookie_secure":    false,
	"server.load_more_limit":  30,
	"server.load_more_window": "1m",
	"server.shutdown_timeout": "10s",
	"build.output_dir":        "out",
	"build.concurrency":       8,
	"log.level":               "info",
	"log.format":              "console",
}

// loadConfig reads .env, then the config file, then SPACETRAVELING_* env
// vars, in increasing precedence.
func loadConfig(cfgFile string, stderr io.Writer) (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("spacetraveling")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SPACETRAVELING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return config{}, fmt.Errorf("read config: %w", err)
		}
		fmt.Fprintln(stderr, "No config file found; using defaults and environment variables.")
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c config) site() spacetraveling.SiteConfig {
	return spacetraveling.SiteConfig{
		Name:             c.Site.Name,
		URL:              c.Site.URL,
		Description:      c.Site.Description,
		Author:           c.Site.Author,
		Locale:           c.Site.Locale,
		Timezone:         c.Site.Timezone,
		Addr:             c.Server.Addr,
		ShutdownTimeout:  c.Server.ShutdownTimeout,
		SessionSecret:    c.Server.SessionSecret,
		CookieSecure:     c.Server.CookieSecure,
		OutputDir:        c.Build.OutputDir,
		BuildConcurrency: c.Build.Concurrency,
		LoadMoreLimit:    c.Server.LoadMoreLimit,
		LoadMoreWindow:   c.Server.LoadMoreWindow,
	}
}

func newLogger(c config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if c.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
