package browser

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodRenderer renders through a go-rod controlled Chromium. Like PlaywrightRenderer
// it launches one browser per call and kills it on return.
type RodRenderer struct {
	opts   *Options
	logger *slog.Logger
}

func NewRodRenderer(opts *Options, logger *slog.Logger) *RodRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RodRenderer{
		opts:   opts,
		logger: logger.With("component", "browser", "engine", "rod"),
	}
}

func (r *RodRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", categorizeError(err, ErrCodeNavigation, "render canceled before start")
	}

	r.logger.Info("rendering page", "url", url)

	l := launcher.New().
		Context(ctx).
		Headless(r.opts.Headless).
		NoSandbox(true)
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	defer l.Cleanup()
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return "", NewRenderError(ErrCodeBrowserStart, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", NewRenderError(ErrCodeBrowserStart, "failed to connect to browser", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug("browser close returned error", "error", err)
		}
	}()

	var page *rod.Page
	if r.opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return "", NewRenderError(ErrCodeBrowserStart, "failed to create new page", err)
	}

	if r.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      r.opts.UserAgent,
			AcceptLanguage: r.opts.AcceptLanguage,
		}); err != nil {
			r.logger.Warn("failed to set user agent", "error", err)
		}
	}

	p := page.Timeout(r.opts.Timeout)

	if err := p.Navigate(url); err != nil {
		return "", categorizeError(err, ErrCodeNavigation, "failed to load page")
	}

	if err := p.WaitLoad(); err != nil {
		r.logger.Debug("load event did not fire, continuing with current DOM", "error", err)
	}

	if err := settle(ctx, r.opts.Settle); err != nil {
		return "", categorizeError(err, ErrCodeTimeout, "render canceled while waiting for page")
	}

	html, err := p.HTML()
	if err != nil {
		return "", categorizeError(err, ErrCodeContent, "failed to get page content")
	}

	r.logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
