package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless       bool
	Stealth        bool
	Timeout        time.Duration
	Settle         time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	Locale         string
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Stealth:        true,
		Timeout:        60 * time.Second,
		Settle:         10 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9",
		Locale:         "en-US",
		ExtraHeaders: map[string]string{
			"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"DNT":    "1",
		},
	}
}

// PlaywrightRenderer starts a fresh Chromium for every Render call and tears it
// down before returning.
type PlaywrightRenderer struct {
	opts   *Options
	logger *slog.Logger
}

func NewPlaywrightRenderer(opts *Options, logger *slog.Logger) *PlaywrightRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaywrightRenderer{
		opts:   opts,
		logger: logger.With("component", "browser", "engine", "playwright"),
	}
}

// session is one playwright driver, browser and context.
type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

func (r *PlaywrightRenderer) newSession() (*session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	headers := make(map[string]string, len(r.opts.ExtraHeaders)+1)
	for k, v := range r.opts.ExtraHeaders {
		headers[k] = v
	}
	if r.opts.AcceptLanguage != "" {
		headers["Accept-Language"] = r.opts.AcceptLanguage
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(r.opts.UserAgent),
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            playwright.String(r.opts.Locale),
		Viewport: &playwright.Size{
			Width:  r.opts.ViewportWidth,
			Height: r.opts.ViewportHeight,
		},
		ExtraHttpHeaders: headers,
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &session{pw: pw, browser: browser, context: bctx}, nil
}

func (s *session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

func (r *PlaywrightRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", categorizeError(err, ErrCodeNavigation, "render canceled before start")
	}

	r.logger.Info("rendering page", "url", url)

	s, err := r.newSession()
	if err != nil {
		return "", NewRenderError(ErrCodeBrowserStart, "could not start browsing session", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			r.logger.Warn("failed to close browsing session", "error", err)
		}
	}()

	page, err := s.context.NewPage()
	if err != nil {
		return "", NewRenderError(ErrCodeBrowserStart, "failed to create new page", err)
	}
	page.SetDefaultTimeout(float64(r.opts.Timeout.Milliseconds()))

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(r.opts.Timeout.Milliseconds())),
	}); err != nil {
		return "", categorizeError(err, ErrCodeNavigation, "failed to load page")
	}

	if err := settle(ctx, r.opts.Settle); err != nil {
		return "", categorizeError(err, ErrCodeTimeout, "render canceled while waiting for page")
	}

	html, err := page.Content()
	if err != nil {
		return "", categorizeError(err, ErrCodeContent, "failed to get page content")
	}

	r.logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
