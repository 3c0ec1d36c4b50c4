package models

import (
	"strings"
	"time"
)

// Unknown is the sentinel used when the product page does not expose a title or manufacturer.
const Unknown = "Unknown"

// ProductRecord holds the fields extracted from one rendered product page.
// It lives for a single check and is never persisted.
type ProductRecord struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Manufacturer    string    `json:"manufacturer"`
	CountryOfOrigin *string   `json:"country_of_origin,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

func NewProductRecord(url string) *ProductRecord {
	return &ProductRecord{
		URL:          url,
		Title:        Unknown,
		Manufacturer: Unknown,
		ScrapedAt:    time.Now(),
	}
}

// HasCountry reports whether a non-empty country of origin was found.
func (p *ProductRecord) HasCountry() bool {
	return p.CountryOfOrigin != nil && strings.TrimSpace(*p.CountryOfOrigin) != ""
}

// Country returns the country of origin or "" when absent.
func (p *ProductRecord) Country() string {
	if !p.HasCountry() {
		return ""
	}
	return strings.TrimSpace(*p.CountryOfOrigin)
}

// KnownManufacturer is false when the page did not expose a manufacturer.
func (p *ProductRecord) KnownManufacturer() bool {
	return p.Manufacturer != "" && p.Manufacturer != Unknown
}

func (p *ProductRecord) SetCountry(country string) {
	country = strings.TrimSpace(country)
	if country == "" {
		p.CountryOfOrigin = nil
		return
	}
	p.CountryOfOrigin = &country
}
