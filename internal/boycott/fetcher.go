package boycott

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	tileSelector  = "div.tile.boycott"
	titleSelector = "h3"

	maxBodySize = 10 * 1024 * 1024
)

// FetchError is returned when the campaign listing cannot be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch boycott list %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch boycott list %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	ChromeTLS bool
	// Client overrides the HTTP client built from the options above.
	Client *http.Client
}

// Fetcher pulls the list of boycotted companies from the campaign website.
// It keeps no state between calls.
type Fetcher struct {
	url     string
	client  *http.Client
	headers map[string]string
	logger  *slog.Logger
}

func NewFetcher(opts Options, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
		if opts.ChromeTLS {
			client.Transport = newChromeTransport()
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	return &Fetcher{
		url:    opts.URL,
		client: client,
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-GB,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
		logger: logger.With("component", "boycott_fetcher"),
	}
}

// Fetch performs one GET against the listing and returns the campaign titles in page order.
func (f *Fetcher) Fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("fetching boycott list", "url", f.url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: f.url, StatusCode: resp.StatusCode}
	}

	titles, err := ParseBoycottList(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	f.logger.Info("fetched boycott list", "url", f.url, "count", len(titles))
	return titles, nil
}

// FetchOrNil degrades every failure to a nil list. Callers treat nil as "no canonical match".
func (f *Fetcher) FetchOrNil(ctx context.Context) []string {
	titles, err := f.Fetch(ctx)
	if err != nil {
		f.logger.Error("error fetching boycott list", "error", err)
		return nil
	}
	return titles
}

// ParseBoycottList extracts the title of every boycott tile.
func ParseBoycottList(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	titles := make([]string, 0)
	doc.Find(tileSelector).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(titleSelector).First().Text())
		if title != "" {
			titles = append(titles, title)
		}
	})

	return titles, nil
}
