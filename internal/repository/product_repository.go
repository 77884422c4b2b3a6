package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateSKU        = errors.New("product with this SKU already exists")
	ErrDuplicateNameBrand  = errors.New("product with this name already exists for the brand")
	ErrConstraintViolation = errors.New("product violates a table constraint")
)

const (
	uniqueViolation         = "23505"
	integrityViolationClass = "23"

	constraintSKU       = "products_sku_key"
	constraintNameBrand = "products_name_brand_key"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistsByNameAndBrand(ctx context.Context, name, brand string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product. Unique index violations are reported as
// ErrDuplicateSKU or ErrDuplicateNameBrand, any other integrity violation
// wraps ErrConstraintViolation.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, sku, category, price, release_date, image_url,
		                      stock_quantity, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.SKU,
		string(product.Category),
		product.Price,
		product.ReleaseDate,
		product.ImageURL,
		product.StockQuantity,
		product.IsAvailable,
		product.CreatedAt,
	)

	if err != nil {
		return classifyWriteError(err)
	}

	return nil
}

// classifyWriteError maps integrity violations (SQLSTATE class 23) to the
// repository sentinels. The named unique keys get their own errors.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || !strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintSKU:
			return ErrDuplicateSKU
		case constraintNameBrand:
			return ErrDuplicateNameBrand
		}
	}
	return fmt.Errorf("failed to create product: %w: %w", ErrConstraintViolation, err)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, brand, sku, category, price, release_date, image_url,
		       stock_quantity, is_available, created_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	var category string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.SKU,
		&category,
		&product.Price,
		&product.ReleaseDate,
		&product.ImageURL,
		&product.StockQuantity,
		&product.IsAvailable,
		&product.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	product.Category = domain.Category(category)
	product.ReleaseDate = product.ReleaseDate.UTC()
	product.CreatedAt = product.CreatedAt.UTC()
	return product, nil
}

// ExistsBySKU reports whether a product with the given SKU is stored
func (r *productRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check SKU existence: %w", err)
	}
	return exists, nil
}

// ExistsByNameAndBrand reports whether the name is already used by the brand
func (r *productRepository) ExistsByNameAndBrand(ctx context.Context, name, brand string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1 AND brand = $2)`,
		name, brand,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check name and brand existence: %w", err)
	}
	return exists, nil
}

// CountCreatedBetween counts products with from <= created_at < to
func (r *productRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
