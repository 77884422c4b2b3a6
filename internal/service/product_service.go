package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/correlation"
	"product-catalog/internal/derivation"
	"product-catalog/internal/domain"
	"product-catalog/internal/logger"
	"product-catalog/internal/metrics"
	"product-catalog/internal/repository"
	"product-catalog/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.ProductView, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductView, error)
}

type productService struct {
	repo      repository.ProductRepository
	validator *validation.Validator
	engine    *derivation.Engine
	cache     cache.Invalidator
	cacheKey  string
	metrics   metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new instance of ProductService. invalidator
// may be nil when no listing cache is deployed.
func NewProductService(
	repo repository.ProductRepository,
	validator *validation.Validator,
	engine *derivation.Engine,
	invalidator cache.Invalidator,
	cacheKey string,
	recorder metrics.Recorder,
	log *zap.Logger,
) ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NewLogRecorder(log)
	}

	return &productService{
		repo:      repo,
		validator: validator,
		engine:    engine,
		cache:     invalidator,
		cacheKey:  cacheKey,
		metrics:   recorder,
		logger:    log,
		now:       time.Now,
	}
}

// CreateProduct validates, persists and projects a new product. Every call
// records exactly one OperationMetrics value, whatever the outcome.
//
// Returned errors are *ValidationError, *DuplicateKeyError or
// *PersistenceError.
func (s *productService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.ProductView, error) {
	start := time.Now()

	scope := logger.NewScope(ctx, s.logger, correlation.NewOperationID(),
		zap.String("product_name", req.Name),
		zap.String("sku", req.SKU),
		zap.String("category", req.Category.String()),
	)
	ctx = logger.WithScope(ctx, scope)

	m := domain.OperationMetrics{
		OperationID: scope.OperationID,
		ProductName: req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
	}

	scope.Info(logger.ProductCreationStarted, "Product creation started",
		zap.String("brand", req.Brand),
	)

	// Validating
	validationStart := time.Now()
	outcome, err := s.validator.Validate(ctx, req)
	if err != nil {
		m.ValidationDuration = time.Since(validationStart)
		scope.Error(logger.ProductValidationFailed, "Product validation could not complete", zap.Error(err))
		return s.fail(ctx, m, start, &PersistenceError{Op: "validation", Err: err})
	}
	if !outcome.Valid() {
		m.ValidationDuration = time.Since(validationStart)
		scope.Warn(logger.ProductValidationFailed, "Product validation failed",
			zap.Strings("errors", outcome.Messages()),
		)
		return s.fail(ctx, m, start, &ValidationError{Failures: outcome.Failures})
	}

	// Checking uniqueness again; the rules and the insert are not atomic
	sku := domain.NormalizeSKU(req.SKU)
	exists, err := s.repo.ExistsBySKU(ctx, sku)
	m.ValidationDuration = time.Since(validationStart)
	if err != nil {
		scope.Error(logger.SKUValidationPerformed, "SKU re-check failed", zap.Error(err))
		return s.fail(ctx, m, start, &PersistenceError{Op: "sku re-check", Err: err})
	}
	scope.Info(logger.SKUValidationPerformed, "SKU validated", zap.Bool("exists", exists))
	if exists {
		scope.Warn(logger.ProductValidationFailed, "Product with SKU already exists")
		return s.fail(ctx, m, start, &ValidationError{Failures: []validation.Failure{{
			Field:   validation.FieldSKU,
			Message: fmt.Sprintf("Product with SKU '%s' already exists.", req.SKU),
		}}})
	}

	product := domain.NewProduct(req, s.now())
	scope.Info(logger.StockValidationPerformed, "Stock validated",
		zap.Int("stock_quantity", product.StockQuantity),
		zap.Bool("is_available", product.IsAvailable),
	)

	// Persisting
	scope.Info(logger.DatabaseOperationStarted, "Saving product to database",
		zap.String("product_id", product.ID.String()),
	)
	persistStart := time.Now()
	err = s.repo.Create(ctx, product)
	m.PersistenceDuration = time.Since(persistStart)
	if err != nil {
		perr := s.classifyInsertError(req, err)
		scope.Error(logger.ProductPersistenceFailed, "Failed to save product", zap.Error(err))
		return s.fail(ctx, m, start, perr)
	}
	scope.Info(logger.DatabaseOperationCompleted, "Product saved to database",
		zap.String("product_id", product.ID.String()),
		zap.Duration("database_time", m.PersistenceDuration),
	)

	s.invalidateCache(ctx, scope)

	// Deriving
	view := s.engine.Project(product)

	m.Success = true
	m.TotalDuration = time.Since(start)
	scope.Info(logger.ProductCreationCompleted, "Product created successfully",
		zap.String("product_id", product.ID.String()),
		zap.Duration("total_time", m.TotalDuration),
	)
	s.metrics.Record(ctx, m)

	return view, nil
}

// GetProduct returns the presentation view of a stored product. A missing
// product is reported as repository.ErrProductNotFound.
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductView, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "find", Err: err}
	}
	return s.engine.Project(product), nil
}

func (s *productService) classifyInsertError(req domain.CreateProductRequest, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateSKU):
		return &DuplicateKeyError{Field: validation.FieldSKU, Value: domain.NormalizeSKU(req.SKU), Err: err}
	case errors.Is(err, repository.ErrDuplicateNameBrand):
		return &DuplicateKeyError{Field: "name_brand", Value: req.Name + " / " + req.Brand, Err: err}
	default:
		return &PersistenceError{Op: "insert", Err: err}
	}
}

// invalidateCache evicts the product listing. Failures are logged only.
func (s *productService) invalidateCache(ctx context.Context, scope *logger.Scope) {
	if s.cache == nil || s.cacheKey == "" {
		return
	}

	if err := s.cache.Remove(ctx, s.cacheKey); err != nil {
		scope.Warn(logger.CacheOperationPerformed, "Cache invalidation failed",
			zap.String("cache_key", s.cacheKey),
			zap.Error(err),
		)
		return
	}
	scope.Info(logger.CacheOperationPerformed, "Cache invalidated", zap.String("cache_key", s.cacheKey))
}

func (s *productService) fail(ctx context.Context, m domain.OperationMetrics, start time.Time, err error) (*domain.ProductView, error) {
	m.Success = false
	m.ErrorReason = err.Error()
	m.TotalDuration = time.Since(start)
	s.metrics.Record(ctx, m)
	return nil, err
}
