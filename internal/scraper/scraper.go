package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/boycott-detector/internal/models"
)

var (
	ErrInvalidURL  = errors.New("invalid product URL")
	ErrASINMissing = errors.New("no ASIN in URL")
)

// Scraper turns a product URL into a ProductRecord.
type Scraper interface {
	ScrapeProduct(ctx context.Context, url string) (*models.ProductRecord, error)
}
