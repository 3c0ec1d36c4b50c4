package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/maltedev/boycott-detector/internal/boycott"
	"github.com/maltedev/boycott-detector/internal/browser"
	"github.com/maltedev/boycott-detector/internal/config"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/logger"
	"github.com/maltedev/boycott-detector/internal/parser"
	"github.com/maltedev/boycott-detector/internal/scraper"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func loadConfig(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if engine != "" {
		c.Browser.Engine = strings.ToLower(engine)
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cfg = c
	return nil
}

func stderrLogger() *slog.Logger {
	l := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	slog.SetDefault(l)
	return l
}

func browserOptions(c *config.Config) *browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = c.Browser.Headless
	opts.Stealth = c.Browser.Stealth
	opts.Timeout = c.Browser.Timeout
	opts.Settle = c.Browser.Settle
	opts.UserAgent = c.Browser.UserAgent
	opts.Locale = c.Browser.Locale
	opts.AcceptLanguage = c.Browser.AcceptLanguage
	opts.ViewportWidth = c.Browser.ViewportWidth
	opts.ViewportHeight = c.Browser.ViewportHeight
	return opts
}

func newFetcher(c *config.Config, log *slog.Logger) *boycott.Fetcher {
	return boycott.NewFetcher(boycott.Options{
		URL:       c.Boycott.ListURL,
		Timeout:   c.Boycott.HTTPTimeout,
		UserAgent: c.Boycott.UserAgent,
		ChromeTLS: c.Boycott.ChromeTLS,
	}, log)
}

func newSession(ctx context.Context, c *config.Config, log *slog.Logger) (*detector.Session, error) {
	renderer, err := browser.NewRenderer(c.Browser.Engine, browserOptions(c), log)
	if err != nil {
		return nil, err
	}

	return detector.New(ctx, detector.Deps{
		Lists:        newFetcher(c, log),
		Scraper:      scraper.NewAmazonScraper(renderer, parser.NewAmazonParser(), log),
		PersonalPath: c.Personal.Path,
		Logger:       log,
	})
}
