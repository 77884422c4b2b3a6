package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the closed set of catalog categories
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
)

// Categories lists every known category in declaration order
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// CreateProductRequest carries the caller supplied attributes of a new product
type CreateProductRequest struct {
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	SKU           string          `json:"sku"`
	Category      Category        `json:"category"`
	Price         decimal.Decimal `json:"price"`
	ReleaseDate   time.Time       `json:"release_date"`
	ImageURL      *string         `json:"image_url,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
}

// Product represents a product in the catalog
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Brand         string          `json:"brand" db:"brand"`
	SKU           string          `json:"sku" db:"sku"`
	Category      Category        `json:"category" db:"category"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ReleaseDate   time.Time       `json:"release_date" db:"release_date"`
	ImageURL      *string         `json:"image_url,omitempty" db:"image_url"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// NormalizeSKU removes the spaces a caller may use to group SKU characters.
// Lookups and storage use the normalised form.
func NormalizeSKU(sku string) string {
	return strings.ReplaceAll(sku, " ", "")
}

// NewProduct builds the record for an accepted request. Availability is
// fixed at creation time from the requested stock.
func NewProduct(req CreateProductRequest, now time.Time) *Product {
	return &Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Brand:         req.Brand,
		SKU:           NormalizeSKU(req.SKU),
		Category:      req.Category,
		Price:         req.Price,
		ReleaseDate:   req.ReleaseDate.UTC(),
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsAvailable:   req.StockQuantity > 0,
		CreatedAt:     now.UTC(),
	}
}

// ProductView is the presentation projection of a Product returned to callers
type ProductView struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Brand               string          `json:"brand"`
	SKU                 string          `json:"sku"`
	CategoryDisplayName string          `json:"category_display_name"`
	Price               decimal.Decimal `json:"price"`
	FormattedPrice      string          `json:"formatted_price"`
	ReleaseDate         time.Time       `json:"release_date"`
	CreatedAt           time.Time       `json:"created_at"`
	ImageURL            *string         `json:"image_url"`
	IsAvailable         bool            `json:"is_available"`
	StockQuantity       int             `json:"stock_quantity"`
	ProductAge          string          `json:"product_age"`
	BrandInitials       string          `json:"brand_initials"`
	AvailabilityStatus  string          `json:"availability_status"`
}
