// Package derivation computes the presentation fields of a product.
//
// Every derived field is produced by a pure function of the stored record
// (and, for the age label, the current date). The functions are kept in a
// fixed table keyed by field name so the projection never depends on the
// order in which fields are resolved.
package derivation

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"product-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	FieldCategoryDisplayName = "CategoryDisplayName"
	FieldFormattedPrice      = "FormattedPrice"
	FieldProductAge          = "ProductAge"
	FieldBrandInitials       = "BrandInitials"
	FieldAvailabilityStatus  = "AvailabilityStatus"
)

var homeDiscountFactor = decimal.RequireFromString("0.9")

var categoryDisplayNames = map[domain.Category]string{
	domain.CategoryElectronics: "Electronics & Technology",
	domain.CategoryHome:        "Home & Garden",
	domain.CategoryClothing:    "Clothing & Fashion",
	domain.CategoryBooks:       "Books & Media",
}

// CategoryDisplayName maps a category to its display label, falling back to
// the category's own label.
func CategoryDisplayName(c domain.Category) string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return c.String()
}

// EffectivePrice is the price shown to callers: Home products get a 10%
// discount rounded half-to-even to cents. The stored price is untouched.
func EffectivePrice(p *domain.Product) decimal.Decimal {
	if p.Category == domain.CategoryHome {
		return p.Price.Mul(homeDiscountFactor).RoundBank(2)
	}
	return p.Price
}

// PresentedImageURL suppresses images for Home products
func PresentedImageURL(p *domain.Product) *string {
	if p.Category == domain.CategoryHome || p.ImageURL == nil {
		return nil
	}
	url := *p.ImageURL
	return &url
}

// ProductAge labels how long ago a product was released, counting whole
// UTC calendar days.
func ProductAge(releaseDate, now time.Time) string {
	days := calendarDays(releaseDate, now)

	switch {
	case days < 30:
		return "New Release"
	case days < 365:
		return plural(max(1, days/30), "month")
	case days < 1825:
		return plural(max(1, days/365), "year")
	default:
		return "Classic"
	}
}

func calendarDays(from, to time.Time) int {
	f := from.UTC()
	t := to.UTC()
	start := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " old"
	}
	return strconv.Itoa(n) + " " + unit + "s old"
}

// BrandInitials returns the upper-cased first letters of the first and last
// words of brand, a single letter for one word and "?" for none.
func BrandInitials(brand string) string {
	words := strings.Fields(brand)

	switch len(words) {
	case 0:
		return "?"
	case 1:
		return initial(words[0])
	default:
		return initial(words[0]) + initial(words[len(words)-1])
	}
}

func initial(word string) string {
	for _, r := range word {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// AvailabilityStatus consults the availability flag before the stock level
func AvailabilityStatus(isAvailable bool, stock int) string {
	if !isAvailable {
		return "Out of Stock"
	}

	switch {
	case stock <= 0:
		return "Unavailable"
	case stock == 1:
		return "Last Item"
	case stock <= 5:
		return "Limited Stock"
	default:
		return "In Stock"
	}
}
