package derivation

import (
	"time"

	"product-catalog/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders amounts as a currency symbol followed by the
// locale-grouped amount with two decimals, e.g. "$1,234.50".
type MoneyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewMoneyFormatter builds a formatter for the BCP 47 locale tag. Unknown
// tags fall back to American English.
func NewMoneyFormatter(symbol, locale string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &MoneyFormatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

func (f *MoneyFormatter) Format(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	if value < 0 {
		return "-" + f.symbol + f.printer.Sprintf("%.2f", -value)
	}
	return f.symbol + f.printer.Sprintf("%.2f", value)
}

type resolveContext struct {
	now   time.Time
	money *MoneyFormatter
}

type resolver func(rc resolveContext, p *domain.Product) string

// resolvers is the fixed derivation table; each entry is independent of the others
var resolvers = map[string]resolver{
	FieldCategoryDisplayName: func(_ resolveContext, p *domain.Product) string {
		return CategoryDisplayName(p.Category)
	},
	FieldFormattedPrice: func(rc resolveContext, p *domain.Product) string {
		return rc.money.Format(EffectivePrice(p))
	},
	FieldProductAge: func(rc resolveContext, p *domain.Product) string {
		return ProductAge(p.ReleaseDate, rc.now)
	},
	FieldBrandInitials: func(_ resolveContext, p *domain.Product) string {
		return BrandInitials(p.Brand)
	},
	FieldAvailabilityStatus: func(_ resolveContext, p *domain.Product) string {
		return AvailabilityStatus(p.IsAvailable, p.StockQuantity)
	},
}

// Engine projects stored products into presentation views
type Engine struct {
	money *MoneyFormatter
	now   func() time.Time
}

// NewEngine creates an engine using money for prices and now as the clock
func NewEngine(money *MoneyFormatter, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{money: money, now: now}
}

// Resolve computes a single derived field by name
func (e *Engine) Resolve(field string, p *domain.Product) (string, bool) {
	fn, ok := resolvers[field]
	if !ok {
		return "", false
	}
	return fn(e.context(), p), true
}

// Project builds the presentation view of p
func (e *Engine) Project(p *domain.Product) *domain.ProductView {
	rc := e.context()
	derived := make(map[string]string, len(resolvers))
	for field, fn := range resolvers {
		derived[field] = fn(rc, p)
	}

	return &domain.ProductView{
		ID:                  p.ID,
		Name:                p.Name,
		Brand:               p.Brand,
		SKU:                 p.SKU,
		CategoryDisplayName: derived[FieldCategoryDisplayName],
		Price:               EffectivePrice(p),
		FormattedPrice:      derived[FieldFormattedPrice],
		ReleaseDate:         p.ReleaseDate,
		CreatedAt:           p.CreatedAt,
		ImageURL:            PresentedImageURL(p),
		IsAvailable:         p.IsAvailable,
		StockQuantity:       p.StockQuantity,
		ProductAge:          derived[FieldProductAge],
		BrandInitials:       derived[FieldBrandInitials],
		AvailabilityStatus:  derived[FieldAvailabilityStatus],
	}
}

func (e *Engine) context() resolveContext {
	return resolveContext{now: e.now().UTC(), money: e.money}
}
