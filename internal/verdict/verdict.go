// Package verdict decides whether a scraped product is boycotted.
package verdict

import (
	"fmt"
	"strings"

	"github.com/maltedev/boycott-detector/internal/models"
)

const (
	CanonicalSourceURL = "https://www.ethicalconsumer.org/ethicalcampaigns/boycotts"
	BoycottsListURL    = "https://www.ethicalconsumer.org/boycotts/boycotts-list"

	highRiskCountry = "China"
)

// Lookup is the personal boycott list as seen by Evaluate.
type Lookup interface {
	Contains(name string) bool
}

// Evaluate matches the product's manufacturer against the canonical list
// (case-insensitive) and then the personal list (exact). The canonical list
// always wins. A nil canonical list or personal lookup never matches, and
// neither does a manufacturer the page did not expose.
func Evaluate(record *models.ProductRecord, canonical []string, personal Lookup) models.Verdict {
	if record == nil {
		record = models.NewProductRecord("")
	}

	v := models.Verdict{
		Source:       models.SourceNone,
		Title:        record.Title,
		Manufacturer: record.Manufacturer,
	}

	known := record.KnownManufacturer()

	switch {
	case known && matchCanonical(record.Manufacturer, canonical):
		v.IsBoycotted = true
		v.Source = models.SourceCanonical
		v.Reason = fmt.Sprintf("%s is on the boycott list because %s makes it.\nTo find out more visit %s",
			record.Title, record.Manufacturer, CanonicalSourceURL)
	case known && personal != nil && personal.Contains(record.Manufacturer):
		v.IsBoycotted = true
		v.Source = models.SourcePersonal
		v.Reason = fmt.Sprintf("%s is on the boycott list because %s (personal boycott list) makes it.\nTo find out more visit %s",
			record.Title, record.Manufacturer, CanonicalSourceURL)
	default:
		v.Reason = fmt.Sprintf("%s is not on the boycott list because %s does not have an active boycott.",
			record.Title, record.Manufacturer)
	}

	v.CountryNote, v.CountryWarning = countryNotes(record)

	return v
}

func matchCanonical(manufacturer string, canonical []string) bool {
	for _, name := range canonical {
		if strings.EqualFold(manufacturer, name) {
			return true
		}
	}
	return false
}

func countryNotes(record *models.ProductRecord) (note, warning string) {
	if !record.HasCountry() {
		return "", "WARNING: Unable to check the country of origin. This product may have been made in an unsafe working environment. " +
			"It is possible that it was made with forced labor. " +
			"Some people have decided to boycott all products made in China because of this. Find out more here: " + BoycottsListURL
	}

	country := record.Country()
	note = fmt.Sprintf("This product was made in %s.", country)

	if country == highRiskCountry {
		warning = "WARNING: This product was made in China. It is possible that it was made with forced labor. " +
			"Some people have decided to boycott all products made in China because of this. Find out more here: " + BoycottsListURL
	}

	return note, warning
}
