package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"product-catalog/internal/domain"
	"product-catalog/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	FieldName          = "name"
	FieldBrand         = "brand"
	FieldSKU           = "sku"
	FieldCategory      = "category"
	FieldPrice         = "price"
	FieldReleaseDate   = "release_date"
	FieldStockQuantity = "stock_quantity"
	FieldImageURL      = "image_url"
	FieldProduct       = "product"
)

const (
	nameMinLength        = 1
	nameMaxLength        = 200
	brandMinLength       = 2
	brandMaxLength       = 100
	clothingBrandMinimum = 3
	maxStockQuantity     = 100000
	expensiveStockLimit  = 20
	premiumStockLimit    = 10
	electronicsMaxYears  = 5
	priceMaxDecimals     = 2
)

var (
	minPrice            = decimal.Zero
	maxPrice            = decimal.NewFromInt(10000)
	electronicsMinPrice = decimal.NewFromInt(50)
	homeMaxPrice        = decimal.NewFromInt(200)
	expensivePriceFloor = decimal.NewFromInt(100)
	premiumPriceFloor   = decimal.NewFromInt(500)
	earliestReleaseDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	brandPattern        = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.]+$`)
	skuPattern          = regexp.MustCompile(`^[A-Za-z0-9-]{5,20}$`)
	imageURLSchemes     = []string{"http://", "https://"}
	imageURLExtensions  = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// input is what a rule sees: the request and the instant validation started
type input struct {
	req *domain.CreateProductRequest
	now time.Time
}

type checkFunc func(ctx context.Context, in input) (bool, error)

// rule is one predicate with its failure message. A rule whose cond is set
// and false is skipped.
type rule struct {
	field   string
	message string
	cond    func(in input) bool
	check   checkFunc
}

func must(field, message string, pred func(in input) bool) rule {
	return rule{
		field:   field,
		message: message,
		check: func(_ context.Context, in input) (bool, error) {
			return pred(in), nil
		},
	}
}

func mustAsync(field, message string, check checkFunc) rule {
	return rule{field: field, message: message, check: check}
}

func (r rule) when(cond func(in input) bool) rule {
	r.cond = cond
	return r
}

func (r rule) applies(in input) bool {
	return r.cond == nil || r.cond(in)
}

func categoryIs(c domain.Category) func(in input) bool {
	return func(in input) bool { return in.req.Category == c }
}

// containsAny reports whether s contains any of words, ignoring case
func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func runeLengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func isValidImageURL(url string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))

	hasScheme := false
	for _, scheme := range imageURLSchemes {
		if strings.HasPrefix(lower, scheme) {
			hasScheme = true
			break
		}
	}
	if !hasScheme {
		return false
	}

	for _, ext := range imageURLExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hasImageURL(in input) bool {
	return in.req.ImageURL != nil && strings.TrimSpace(*in.req.ImageURL) != ""
}

func withinElectronicsWindow(in input) bool {
	return !in.req.ReleaseDate.Before(in.now.AddDate(-electronicsMaxYears, 0, 0))
}

// buildRules returns the full rule list in evaluation order: field shape,
// uniqueness, business rules, category rules and the final cross-field rule.
func (v *Validator) buildRules() []rule {
	var rules []rule
	rules = append(rules, fieldRules(v.cfg.ForbiddenNameWords)...)
	rules = append(rules, v.uniquenessRules()...)
	rules = append(rules, v.businessRules()...)
	rules = append(rules, v.categoryRules()...)
	rules = append(rules, v.crossFieldRules()...)
	return rules
}

func fieldRules(forbiddenWords []string) []rule {
	return []rule{
		must(FieldName, "Product name must not be empty.", func(in input) bool {
			return strings.TrimSpace(in.req.Name) != ""
		}),
		must(FieldName, "Product name must be between 1 and 200 characters.", func(in input) bool {
			return runeLengthBetween(in.req.Name, nameMinLength, nameMaxLength)
		}),
		must(FieldName, "Product name contains inappropriate content.", func(in input) bool {
			return !containsAny(in.req.Name, forbiddenWords)
		}),

		must(FieldBrand, "Brand name must not be empty.", func(in input) bool {
			return strings.TrimSpace(in.req.Brand) != ""
		}),
		must(FieldBrand, "Brand name must be between 2 and 100 characters.", func(in input) bool {
			return runeLengthBetween(in.req.Brand, brandMinLength, brandMaxLength)
		}),
		must(FieldBrand, "Brand contains invalid characters.", func(in input) bool {
			return brandPattern.MatchString(in.req.Brand)
		}).when(func(in input) bool { return in.req.Brand != "" }),

		must(FieldSKU, "SKU must not be empty.", func(in input) bool {
			return strings.TrimSpace(in.req.SKU) != ""
		}),
		must(FieldSKU, "SKU must be alphanumeric with hyphens, 5-20 characters.", func(in input) bool {
			return skuPattern.MatchString(domain.NormalizeSKU(in.req.SKU))
		}).when(func(in input) bool { return strings.TrimSpace(in.req.SKU) != "" }),

		must(FieldCategory, "Category must be a valid value.", func(in input) bool {
			return in.req.Category.IsValid()
		}),

		must(FieldPrice, "Price must be greater than 0.", func(in input) bool {
			return in.req.Price.GreaterThan(minPrice)
		}),
		must(FieldPrice, "Price must be less than $10,000.", func(in input) bool {
			return in.req.Price.LessThan(maxPrice)
		}),
		must(FieldPrice, "Price must have at most 2 decimal places.", func(in input) bool {
			return in.req.Price.Equal(in.req.Price.Truncate(priceMaxDecimals))
		}),

		must(FieldReleaseDate, "Release date cannot be before 1900.", func(in input) bool {
			return !in.req.ReleaseDate.Before(earliestReleaseDate)
		}),
		must(FieldReleaseDate, "Release date cannot be in the future.", func(in input) bool {
			return !in.req.ReleaseDate.After(in.now)
		}),

		must(FieldStockQuantity, "Stock quantity must be greater than or equal to 0.", func(in input) bool {
			return in.req.StockQuantity >= 0
		}),
		must(FieldStockQuantity, "Stock quantity must be less than or equal to 100000.", func(in input) bool {
			return in.req.StockQuantity <= maxStockQuantity
		}),

		must(FieldImageURL, "ImageUrl must be a valid HTTP/HTTPS image URL.", func(in input) bool {
			return isValidImageURL(*in.req.ImageURL)
		}).when(hasImageURL),
	}
}

func (v *Validator) uniquenessRules() []rule {
	return []rule{
		mustAsync(FieldName, "Product name must be unique for the brand.", func(ctx context.Context, in input) (bool, error) {
			exists, err := v.store.ExistsByNameAndBrand(ctx, in.req.Name, in.req.Brand)
			if err != nil {
				return false, err
			}
			if exists {
				v.log(ctx).Warn("Name and brand uniqueness check failed",
					zap.String("name", in.req.Name),
					zap.String("brand", in.req.Brand),
				)
			}
			return !exists, nil
		}),
		mustAsync(FieldSKU, "SKU must be unique.", func(ctx context.Context, in input) (bool, error) {
			sku := domain.NormalizeSKU(in.req.SKU)
			exists, err := v.store.ExistsBySKU(ctx, sku)
			if err != nil {
				return false, err
			}
			log := v.log(ctx)
			log.Debug("SKU uniqueness checked", append(logger.SKUValidationPerformed.Fields(),
				zap.String("sku", sku),
				zap.Bool("exists", exists),
			)...)
			if exists {
				log.Warn("SKU uniqueness check failed", append(logger.SKUValidationPerformed.Fields(),
					zap.String("sku", sku),
				)...)
			}
			return !exists, nil
		}),
	}
}

func (v *Validator) businessRules() []rule {
	return []rule{
		mustAsync(FieldProduct, fmt.Sprintf("Daily product addition limit of %d reached.", v.cfg.DailyCreationLimit), func(ctx context.Context, in input) (bool, error) {
			start := startOfDay(in.now)
			count, err := v.store.CountCreatedBetween(ctx, start, start.Add(24*time.Hour))
			if err != nil {
				return false, err
			}
			if count > v.cfg.DailyCreationLimit {
				v.log(ctx).Warn("Daily product addition limit exceeded",
					zap.Int("count", count),
					zap.Int("limit", v.cfg.DailyCreationLimit),
				)
				return false, nil
			}
			return true, nil
		}),
		must(FieldPrice, "Business rule: electronics price must be at least $50.", func(in input) bool {
			return !in.req.Price.LessThan(electronicsMinPrice)
		}).when(categoryIs(domain.CategoryElectronics)),
		must(FieldName, "Business rule: home product name contains a restricted word.", func(in input) bool {
			return !containsAny(in.req.Name, v.cfg.HomeRestrictedWords)
		}).when(categoryIs(domain.CategoryHome)),
		must(FieldStockQuantity, "Business rule: products priced above $500 must have at most 10 units in stock.", func(in input) bool {
			return in.req.StockQuantity <= premiumStockLimit
		}).when(func(in input) bool { return in.req.Price.GreaterThan(premiumPriceFloor) }),
		must(FieldReleaseDate, "Business rule: electronics must be released within the last 5 years.", withinElectronicsWindow).
			when(categoryIs(domain.CategoryElectronics)),
	}
}

func (v *Validator) categoryRules() []rule {
	electronics := categoryIs(domain.CategoryElectronics)
	home := categoryIs(domain.CategoryHome)

	return []rule{
		must(FieldPrice, "Electronics price must be >= $50.", func(in input) bool {
			return in.req.Price.GreaterThanOrEqual(electronicsMinPrice)
		}).when(electronics),
		must(FieldName, "Electronics must contain technology keywords.", func(in input) bool {
			return containsAny(in.req.Name, v.cfg.TechnologyKeywords)
		}).when(electronics),
		must(FieldReleaseDate, "Electronics must be released within last 5 years.", withinElectronicsWindow).
			when(electronics),

		must(FieldPrice, "Home price must be <= $200.", func(in input) bool {
			return in.req.Price.LessThanOrEqual(homeMaxPrice)
		}).when(home),
		must(FieldName, "Home product name must be appropriate.", func(in input) bool {
			return !containsAny(in.req.Name, v.cfg.HomeRestrictedWords)
		}).when(home),

		must(FieldBrand, "Clothing brand name must be at least 3 characters.", func(in input) bool {
			return utf8.RuneCountInString(in.req.Brand) >= clothingBrandMinimum
		}).when(categoryIs(domain.CategoryClothing)),
	}
}

func (v *Validator) crossFieldRules() []rule {
	return []rule{
		must(FieldStockQuantity, "Expensive products (>$100) must have limited stock (≤20 units).", func(in input) bool {
			return in.req.StockQuantity <= expensiveStockLimit
		}).when(func(in input) bool { return in.req.Price.GreaterThan(expensivePriceFloor) }),
	}
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
