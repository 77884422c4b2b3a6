package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/correlation"
	"product-catalog/internal/derivation"
	"product-catalog/internal/domain"
	"product-catalog/internal/repository"
	"product-catalog/internal/validation"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

// Mock repository for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product

	createErr error
	lookupErr error

	// skuTakenFromCall makes ExistsBySKU report true from that call on
	skuTakenFromCall int
	skuCalls         int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return repository.ErrDuplicateSKU
		}
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	m.skuCalls++
	if m.skuTakenFromCall > 0 && m.skuCalls >= m.skuTakenFromCall {
		return true, nil
	}
	for _, p := range m.products {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepository) ExistsByNameAndBrand(ctx context.Context, name, brand string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	for _, p := range m.products {
		if p.Name == name && p.Brand == brand {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return 0, m.lookupErr
	}
	count := 0
	for _, p := range m.products {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

type mockInvalidator struct {
	removed []string
	err     error
}

func (m *mockInvalidator) Remove(ctx context.Context, key string) error {
	m.removed = append(m.removed, key)
	return m.err
}

type recordingRecorder struct {
	records []domain.OperationMetrics
}

func (r *recordingRecorder) Record(ctx context.Context, m domain.OperationMetrics) {
	r.records = append(r.records, m)
}

type fixture struct {
	repo     *mockProductRepository
	cache    *mockInvalidator
	recorder *recordingRecorder
	logs     *observer.ObservedLogs
	service  ProductService
}

func newFixture() *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	clock := func() time.Time { return fixedNow }

	f := &fixture{
		repo:     newMockProductRepository(),
		cache:    &mockInvalidator{},
		recorder: &recordingRecorder{},
		logs:     logs,
	}

	validator := validation.New(f.repo, config.CatalogConfig{
		DailyCreationLimit:  500,
		ForbiddenNameWords:  []string{"badword1", "badword2", "offensive"},
		HomeRestrictedWords: []string{"dangerous", "hazard", "explosive"},
		TechnologyKeywords:  []string{"Tech", "Smart", "Phone", "Galaxy", "Device"},
	}, log, clock)
	engine := derivation.NewEngine(derivation.NewMoneyFormatter("$", "en-US"), clock)

	svc := NewProductService(f.repo, validator, engine, f.cache, "all_products", f.recorder, log)
	svc.(*productService).now = clock
	f.service = svc
	return f
}

func strPtr(s string) *string { return &s }

func galaxyRequest() domain.CreateProductRequest {
	return domain.CreateProductRequest{
		Name:          "Samsung Galaxy S30",
		Brand:         "Samsung Electronics",
		SKU:           "SGS30-2025",
		Category:      domain.CategoryElectronics,
		Price:         decimal.RequireFromString("899.99"),
		ReleaseDate:   fixedNow.AddDate(0, 0, -10),
		ImageURL:      strPtr("https://example.com/galaxy.jpg"),
		StockQuantity: 3,
	}
}

func TestCreateProduct_GalaxyScenario(t *testing.T) {
	f := newFixture()

	view, err := f.service.CreateProduct(context.Background(), galaxyRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, "Electronics & Technology", view.CategoryDisplayName)
	assert.Equal(t, "SE", view.BrandInitials)
	assert.Equal(t, "New Release", view.ProductAge)
	assert.Equal(t, "$899.99", view.FormattedPrice)
	assert.Equal(t, "Limited Stock", view.AvailabilityStatus)
	assert.True(t, view.IsAvailable)

	stored, err := f.repo.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, stored.CreatedAt)

	assert.Equal(t, []string{"all_products"}, f.cache.removed)

	require.Len(t, f.recorder.records, 1)
	record := f.recorder.records[0]
	assert.True(t, record.Success)
	assert.Empty(t, record.ErrorReason)
	assert.Len(t, record.OperationID, 8)
	assert.Equal(t, "SGS30-2025", record.SKU)
	assert.Equal(t, domain.CategoryElectronics, record.Category)
	assert.GreaterOrEqual(t, record.TotalDuration, record.ValidationDuration+record.PersistenceDuration)
}

func TestProperty_AcceptedRequestsRecordOneSuccessfulMetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every accepted request yields one success record and a generated id", prop.ForAll(
		func(cents int64, stock int) bool {
			f := newFixture()
			req := domain.CreateProductRequest{
				Name:          "Field Guide",
				Brand:         "Outdoor Press",
				SKU:           "BOOK-" + uuid.NewString()[:8],
				Category:      domain.CategoryBooks,
				Price:         decimal.New(cents, -2),
				ReleaseDate:   fixedNow.AddDate(-2, 0, 0),
				StockQuantity: stock,
			}

			view, err := f.service.CreateProduct(context.Background(), req)
			if err != nil {
				t.Logf("unexpected error: %v", err)
				return false
			}

			return len(f.recorder.records) == 1 &&
				f.recorder.records[0].Success &&
				view.ID != uuid.Nil
		},
		gen.Int64Range(1, 10000),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateProduct_ReusedSKUIsRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateProduct(ctx, galaxyRequest())
	require.NoError(t, err)

	second := galaxyRequest()
	second.Name = "Samsung Galaxy S30 Ultra"
	_, err = f.service.CreateProduct(ctx, second)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "SKU must be unique.")

	require.Len(t, f.recorder.records, 2)
	failed := f.recorder.records[1]
	assert.False(t, failed.Success)
	assert.NotEmpty(t, failed.ErrorReason)
	assert.Len(t, f.repo.products, 1)
}

func TestCreateProduct_SpacedSKUMatchesStoredSKU(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := galaxyRequest()
	first.SKU = "SGS30 2025"
	view, err := f.service.CreateProduct(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "SGS302025", view.SKU)

	second := galaxyRequest()
	second.Name = "Samsung Galaxy S30 Ultra"
	second.SKU = "SGS302025"
	_, err = f.service.CreateProduct(ctx, second)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "SKU must be unique.")
	assert.Len(t, f.repo.products, 1)
}

func TestCreateProduct_SKUTakenAfterValidation(t *testing.T) {
	f := newFixture()
	// the rule check is the first call, the re-check the second
	f.repo.skuTakenFromCall = 2

	_, err := f.service.CreateProduct(context.Background(), galaxyRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Product with SKU 'SGS30-2025' already exists."}, verr.Messages())
	assert.Empty(t, f.repo.products)
	require.Len(t, f.recorder.records, 1)
	assert.False(t, f.recorder.records[0].Success)
}

func TestCreateProduct_InsertRaceBecomesDuplicateKeyError(t *testing.T) {
	f := newFixture()
	f.repo.createErr = repository.ErrDuplicateNameBrand

	_, err := f.service.CreateProduct(context.Background(), galaxyRequest())

	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name_brand", dup.Field)
	assert.ErrorIs(t, err, repository.ErrDuplicateNameBrand)

	require.Len(t, f.recorder.records, 1)
	assert.False(t, f.recorder.records[0].Success)
	assert.Empty(t, f.cache.removed)
}

func TestCreateProduct_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("connection reset by peer")

	_, err := f.service.CreateProduct(context.Background(), galaxyRequest())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "insert", perr.Op)
	assert.False(t, perr.ConstraintViolation())

	require.Len(t, f.recorder.records, 1)
	record := f.recorder.records[0]
	assert.False(t, record.Success)
	assert.Contains(t, record.ErrorReason, "connection reset by peer")
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to save product").Len())
}

func TestCreateProduct_ConstraintViolationIsFlagged(t *testing.T) {
	f := newFixture()
	f.repo.createErr = fmt.Errorf("failed to create product: %w", repository.ErrConstraintViolation)

	_, err := f.service.CreateProduct(context.Background(), galaxyRequest())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "insert", perr.Op)
	assert.True(t, perr.ConstraintViolation())
	require.Len(t, f.recorder.records, 1)
	assert.False(t, f.recorder.records[0].Success)
}

func TestCreateProduct_LookupFailureDuringValidation(t *testing.T) {
	f := newFixture()
	f.repo.lookupErr = errors.New("database is down")

	_, err := f.service.CreateProduct(context.Background(), galaxyRequest())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "validation", perr.Op)
	require.Len(t, f.recorder.records, 1)
	assert.False(t, f.recorder.records[0].Success)
}

func TestCreateProduct_CacheFailureDoesNotFailCreation(t *testing.T) {
	f := newFixture()
	f.cache.err = errors.New("redis: connection refused")

	view, err := f.service.CreateProduct(context.Background(), galaxyRequest())
	require.NoError(t, err)
	assert.NotNil(t, view)

	warnings := f.logs.FilterMessage("Cache invalidation failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)

	require.Len(t, f.recorder.records, 1)
	assert.True(t, f.recorder.records[0].Success)
}

func TestCreateProduct_HomeDiscountAndImageSuppression(t *testing.T) {
	f := newFixture()
	req := domain.CreateProductRequest{
		Name:          "Ceramic Vase",
		Brand:         "Casa Bella",
		SKU:           "HOME-VASE-01",
		Category:      domain.CategoryHome,
		Price:         decimal.RequireFromString("150.00"),
		ReleaseDate:   fixedNow.AddDate(-1, 0, 0),
		ImageURL:      strPtr("https://example.com/vase.png"),
		StockQuantity: 8,
	}

	view, err := f.service.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "135.00", view.Price.StringFixed(2))
	assert.Equal(t, "$135.00", view.FormattedPrice)
	assert.Nil(t, view.ImageURL)
	assert.Equal(t, "1 year old", view.ProductAge)

	stored, err := f.repo.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("150.00")))
	require.NotNil(t, stored.ImageURL)
}

func TestCreateProduct_ValidationFailureRecordsMetrics(t *testing.T) {
	f := newFixture()
	req := galaxyRequest()
	req.Name = "offensive Galaxy"

	_, err := f.service.CreateProduct(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Product name contains inappropriate content.")
	assert.Empty(t, f.repo.products)
	assert.Empty(t, f.cache.removed)

	require.Len(t, f.recorder.records, 1)
	assert.False(t, f.recorder.records[0].Success)
	assert.Zero(t, f.recorder.records[0].PersistenceDuration)
}

func TestCreateProduct_LogLinesCarryCorrelationAndOperationIDs(t *testing.T) {
	f := newFixture()
	ctx := correlation.WithID(context.Background(), "corr-123")

	_, err := f.service.CreateProduct(ctx, galaxyRequest())
	require.NoError(t, err)

	entries := f.logs.All()
	require.NotEmpty(t, entries)

	operationID := f.recorder.records[0].OperationID
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "corr-123", fields["correlation_id"], entry.Message)
		assert.Equal(t, operationID, fields["operation_id"], entry.Message)
	}

	started := f.logs.FilterMessage("Product creation started").All()
	require.Len(t, started, 1)
	assert.Equal(t, int64(2001), started[0].ContextMap()["event_id"])
	assert.Equal(t, 1, f.logs.FilterMessage("Product created successfully").Len())
}

func TestGetProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CreateProduct(ctx, galaxyRequest())
	require.NoError(t, err)

	found, err := f.service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FormattedPrice, found.FormattedPrice)
	assert.Equal(t, created.BrandInitials, found.BrandInitials)

	_, err = f.service.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}
