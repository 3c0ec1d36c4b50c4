package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/boycott-detector/internal/models"
)

const (
	// BrandLabel is the label Amazon prints in front of the manufacturer in the
	// product overview row.
	BrandLabel = "Brand"

	countryLabel = "Country of Origin"
)

var ErrBlockedPage = errors.New("page is a captcha or robot check")

type AmazonParser struct{}

func NewAmazonParser() *AmazonParser {
	return &AmazonParser{}
}

// ParseProductPage reads title, manufacturer and country of origin from rendered markup.
// Missing fields keep their defaults: "Unknown" for title and manufacturer, nil for country.
func (p *AmazonParser) ParseProductPage(markup string) (*models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if isBlocked(doc) {
		return nil, ErrBlockedPage
	}

	product := models.NewProductRecord("")

	if title := p.extractTitle(doc); title != "" {
		product.Title = title
	}

	if manufacturer := p.extractManufacturer(doc); manufacturer != "" {
		product.Manufacturer = manufacturer
	}

	product.SetCountry(p.extractCountry(doc))

	return product, nil
}

// StripBrandLabel removes a leading "Brand" label, an optional colon and surrounding
// whitespace, and collapses inner whitespace. Text without the label is only
// whitespace-normalized.
func StripBrandLabel(s string) string {
	s = collapseSpace(s)

	if len(s) >= len(BrandLabel) && strings.EqualFold(s[:len(BrandLabel)], BrandLabel) {
		rest := s[len(BrandLabel):]
		if rest == "" || rest[0] == ' ' || rest[0] == ':' {
			s = strings.TrimLeft(rest, ": ")
		}
	}

	return strings.TrimSpace(s)
}

func isBlocked(doc *goquery.Document) bool {
	if doc.Find("#captchacharacters, form[action*='Captcha'], form[action*='validateCaptcha']").Length() > 0 {
		return true
	}
	title := strings.ToLower(doc.Find("title").First().Text())
	return strings.Contains(title, "robot check")
}

func (p *AmazonParser) extractTitle(doc *goquery.Document) string {
	if title := collapseSpace(doc.Find("h1#title").First().Text()); title != "" {
		return title
	}
	return collapseSpace(doc.Find("#productTitle").First().Text())
}

func (p *AmazonParser) extractManufacturer(doc *goquery.Document) string {
	row := doc.Find("tr.po-brand").First()
	if row.Length() == 0 {
		return ""
	}

	if value := collapseSpace(row.Find("span.po-break-word").First().Text()); value != "" {
		return value
	}

	cells := row.Find("td")
	if cells.Length() >= 2 {
		return collapseSpace(cells.Last().Text())
	}

	return StripBrandLabel(row.Text())
}

func (p *AmazonParser) extractCountry(doc *goquery.Document) string {
	if country := p.countryFromOverviewList(doc); country != "" {
		return country
	}
	return p.countryFromDetails(doc)
}

// countryFromOverviewList finds the li labelled "Country of Origin" and reads the first
// item of the next a-unordered-list in document order.
func (p *AmazonParser) countryFromOverviewList(doc *goquery.Document) string {
	var labelSeen bool
	var country string

	doc.Find("li, ul.a-unordered-list").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if !labelSeen {
			labelSeen = goquery.NodeName(s) == "li" && collapseSpace(s.Text()) == countryLabel
			return true
		}

		if goquery.NodeName(s) != "ul" || !s.HasClass("a-unordered-list") {
			return true
		}

		country = collapseSpace(s.Find("span.a-list-item").First().Text())
		return false
	})

	return country
}

// countryFromDetails covers the detail-bullets list and the technical details table.
func (p *AmazonParser) countryFromDetails(doc *goquery.Document) string {
	var country string

	doc.Find("#detailBullets_feature_div li, #detailBulletsWrapper_feature_div li").EachWithBreak(func(i int, s *goquery.Selection) bool {
		label := s.Find("span.a-text-bold").First()
		if !isCountryLabel(label.Text()) {
			return true
		}
		country = collapseSpace(label.Next().Text())
		return country == ""
	})
	if country != "" {
		return country
	}

	doc.Find("table.prodDetTable tr, #productDetails_techSpec_section_1 tr, #productDetails_detailBullets_sections1 tr").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if !isCountryLabel(s.Find("th").First().Text()) {
			return true
		}
		country = collapseSpace(s.Find("td").First().Text())
		return country == ""
	})

	return country
}

func isCountryLabel(s string) bool {
	s = strings.Map(func(r rune) rune {
		// Amazon wraps detail labels in bidi marks
		if r == '\u200e' || r == '\u200f' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(collapseSpace(s), ": ")
	return strings.EqualFold(s, countryLabel)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
