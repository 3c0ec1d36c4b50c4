package parser

import (
	"github.com/maltedev/boycott-detector/internal/models"
)

type Parser interface {
	ParseProductPage(html string) (*models.ProductRecord, error)
}
