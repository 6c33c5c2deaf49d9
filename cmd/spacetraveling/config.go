package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/prismic"
)

// config is everything the commands read from the environment.
type config struct {
	Endpoint string
	Token    string
	PageSize int
	Site     spacetraveling.SiteConfig
	LogLevel log.Lvl
}

// loadConfig reads the environment through getenv.
func loadConfig(getenv func(string) string) (config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := config{
		Endpoint: env("PRISMIC_API_ENDPOINT", ""),
		Token:    env("PRISMIC_ACCESS_TOKEN", ""),
		Site: spacetraveling.SiteConfig{
			Name:          env("SITE_NAME", ""),
			URL:           env("SITE_URL", ""),
			Description:   env("SITE_DESCRIPTION", ""),
			Addr:          env("ADDR", ""),
			DatabasePath:  env("DATABASE_PATH", ""),
			PreviewSecret: env("PREVIEW_SECRET", ""),
			OutDir:        env("OUT_DIR", ""),
		},
	}
	if cfg.Endpoint == "" {
		return config{}, errors.New("PRISMIC_API_ENDPOINT is required")
	}

	var err error
	if cfg.PageSize, err = envInt(env("PAGE_SIZE", "0")); err != nil {
		return config{}, fmt.Errorf("PAGE_SIZE: %w", err)
	}
	if cfg.Site.Revalidate, err = parseRevalidate(env("REVALIDATE", "")); err != nil {
		return config{}, fmt.Errorf("REVALIDATE: %w", err)
	}
	if cfg.Site.CookieSecure, err = envBool(env("COOKIE_SECURE", "false")); err != nil {
		return config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
	}
	if cfg.Site.LocalizeBanners, err = envBool(env("LOCALIZE_BANNERS", "false")); err != nil {
		return config{}, fmt.Errorf("LOCALIZE_BANNERS: %w", err)
	}
	if name := env("TZ_LOCATION", ""); name != "" {
		if cfg.Site.Location, err = time.LoadLocation(name); err != nil {
			return config{}, fmt.Errorf("TZ_LOCATION: %w", err)
		}
	}
	if cfg.LogLevel, err = parseLogLevel(env("LOG_LEVEL", "info")); err != nil {
		return config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// parseRevalidate accepts a number of seconds or a Go duration.
func parseRevalidate(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

func envInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func envBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

func parseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

// prismicOptions turns the config into client options.
func (c config) prismicOptions() []prismic.Option {
	var opts []prismic.Option
	if c.Token != "" {
		opts = append(opts, prismic.WithAccessToken(c.Token))
	}
	if c.PageSize > 0 {
		opts = append(opts, prismic.WithPageSize(c.PageSize))
	}
	return opts
}

// setup loads the config, applies the --log-level flag and returns an App
// reading from the Prismic repository. Callers must Close the App.
func setup(flagLevel string) (*spacetraveling.App, config, error) {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return nil, config{}, err
	}
	if flagLevel != "" {
		if cfg.LogLevel, err = parseLogLevel(flagLevel); err != nil {
			return nil, config{}, fmt.Errorf("--log-level: %w", err)
		}
	}
	log.SetLevel(cfg.LogLevel)
	log.SetPrefix("spacetraveling")

	client, err := prismic.New(cfg.Endpoint, cfg.prismicOptions()...)
	if err != nil {
		return nil, config{}, err
	}
	app := spacetraveling.New(cfg.Site, client)
	app.Echo.Logger.SetLevel(cfg.LogLevel)
	return app, cfg, nil
}
