package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/maltedev/boycott-detector/internal/browser"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/parser"
)

var asinPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})(?:[/?#]|$)`)

// AmazonScraper renders a product page and parses it.
type AmazonScraper struct {
	renderer browser.Renderer
	parser   parser.Parser
	logger   *slog.Logger
}

func NewAmazonScraper(r browser.Renderer, p parser.Parser, logger *slog.Logger) *AmazonScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &AmazonScraper{
		renderer: r,
		parser:   p,
		logger:   logger.With("component", "amazon_scraper"),
	}
}

// ScrapeProduct validates the URL, renders the page and extracts the product record.
// Render failures and captcha pages come back as *browser.RenderError.
func (s *AmazonScraper) ScrapeProduct(ctx context.Context, rawURL string) (*models.ProductRecord, error) {
	productURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	logger := s.logger
	if asin, err := ExtractASIN(productURL); err == nil {
		logger = logger.With("asin", asin)
	}
	logger.Info("scraping product", "url", productURL)

	html, err := s.renderer.Render(ctx, productURL)
	if err != nil {
		return nil, err
	}

	product, err := s.parser.ParseProductPage(html)
	if err != nil {
		if errors.Is(err, parser.ErrBlockedPage) {
			logger.Warn("detected captcha/block", "url", productURL)
			return nil, browser.NewRenderError(browser.ErrCodeBlocked, "Amazon served a robot check instead of the product page", err)
		}
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}

	product.URL = productURL

	logger.Info("scraped product",
		"title", product.Title,
		"manufacturer", product.Manufacturer,
		"hasCountry", product.HasCountry(),
	)

	return product, nil
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return u.String(), nil
}

func ExtractASIN(productURL string) (string, error) {
	matches := asinPattern.FindStringSubmatch(productURL)
	if len(matches) < 2 {
		return "", ErrASINMissing
	}
	return strings.ToUpper(matches[1]), nil
}
